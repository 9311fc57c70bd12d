package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name TerrainProvider --dir ../usecase --output usecase --outpkg usecasemock --filename terrain_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SportCatalogProvider --dir ../usecase --output usecase --outpkg usecasemock --filename sport_catalog_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name URIReader --dir ../usecase --output usecase --outpkg usecasemock --filename uri_reader_mock.go
