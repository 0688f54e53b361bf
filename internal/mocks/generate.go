package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/chat --output domain/chat --outpkg chatmock --filename sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Port --dir ../domain/engine --output domain/engine --outpkg enginemock --filename port_mock.go
