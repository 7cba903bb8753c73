package multimodal

import (
	"fmt"
	"strings"
)

// Parser imports road network from OSM file
type Parser struct {
	filename    string
	highwayTags []string
	networkName string
	idPrefix    string
	verbose     bool
}

func (parser *Parser) String() string {
	return fmt.Sprintf(`
Road network parser parameters:
	filename: '%s'
	highway_tags: '%s'
	network_name: '%s'
	id_prefix: '%s'
	verbose: %t
	`,
		parser.filename,
		strings.Join(parser.highwayTags, ","),
		parser.networkName,
		parser.idPrefix,
		parser.verbose,
	)
}

func NewParser(fileName string, options ...func(*Parser)) *Parser {
	parser := &Parser{
		filename:    fileName,
		highwayTags: defaultHighwayTags,
		networkName: datasetName(fileName),
		verbose:     false,
	}
	for _, option := range options {
		option(parser)
	}
	return parser
}

// WithHighwayTags sets values of 'highway' tag to be imported. Unknown values are ignored
func WithHighwayTags(highwayTags []string) func(*Parser) {
	return func(parser *Parser) {
		parser.highwayTags = highwayTags
	}
}

func WithNetworkName(networkName string) func(*Parser) {
	return func(parser *Parser) {
		parser.networkName = networkName
	}
}

// WithIDPrefix sets prefix of every node and link identifier
func WithIDPrefix(idPrefix string) func(*Parser) {
	return func(parser *Parser) {
		parser.idPrefix = idPrefix
	}
}

func WithVerbose(verbose bool) func(*Parser) {
	return func(parser *Parser) {
		parser.verbose = verbose
	}
}
