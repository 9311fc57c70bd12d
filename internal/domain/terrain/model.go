package terrain

// Terrain is a reservable sports facility as known by the booking platform.
type Terrain struct {
	ID           int64
	Name         string
	Location     string
	Description  string
	Contact      string
	PricePerHour float64
	OpenTime     string
	CloseTime    string
	Images       []string
	SportIDs     []int64
}

// MaxImages caps how many images a terrain draft may carry.
const MaxImages = 5

const (
	DefaultOpenTime  = "08:00"
	DefaultCloseTime = "22:00"
)

// Draft holds the raw, as-typed field values of one terrain form. Contact keeps
// whatever the user entered; PricePerHour stays a numeric string until submit.
type Draft struct {
	Name         string
	Location     string
	Description  string
	Contact      string
	PricePerHour string
	OpenTime     string
	CloseTime    string
	Images       []string
}

// NewDraft returns a draft with the create-mode defaults.
func NewDraft() Draft {
	return Draft{
		OpenTime:  DefaultOpenTime,
		CloseTime: DefaultCloseTime,
	}
}

// DraftFromTerrain seeds a draft from an already persisted terrain. Used in
// edit mode only; validators are not consulted here.
func DraftFromTerrain(t Terrain) Draft {
	openTime := t.OpenTime
	if openTime == "" {
		openTime = DefaultOpenTime
	}
	closeTime := t.CloseTime
	if closeTime == "" {
		closeTime = DefaultCloseTime
	}

	images := make([]string, 0, len(t.Images))
	images = append(images, t.Images...)

	return Draft{
		Name:         t.Name,
		Location:     t.Location,
		Description:  t.Description,
		Contact:      t.Contact,
		PricePerHour: formatPrice(t.PricePerHour),
		OpenTime:     openTime,
		CloseTime:    closeTime,
		Images:       images,
	}
}
