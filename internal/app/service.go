package app

import (
	"github.com/andreypopp/configure/internal/adapters"
	"github.com/andreypopp/configure/internal/ports"
)

type Service struct {
	Parser   ports.DocumentParserPort
	Importer ports.ImporterPort
	// NewLoader creates the document loader for one load; each load gets
	// its own document cache.
	NewLoader func(parser ports.DocumentParserPort, variables map[string]string) ports.DocumentLoaderPort
}

func NewService(importer ports.ImporterPort) Service {
	return Service{
		Parser:   adapters.NewYAMLDocumentAdapter(),
		Importer: importer,
		NewLoader: func(parser ports.DocumentParserPort, variables map[string]string) ports.DocumentLoaderPort {
			return adapters.NewFileDocumentLoader(parser, variables)
		},
	}
}
