package parser

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"importguard/internal/core/errors"
	"importguard/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
	extensions map[string]string
	filenames  map[string]string

	poolsMu sync.Mutex
	pools   map[string]*ParserPool
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
		filenames:  make(map[string]string),
		pools:      make(map[string]*ParserPool),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		for _, name := range spec.Filenames {
			p.filenames[strings.ToLower(filepath.Base(name))] = lang
		}
	}
	return p
}

// NewPythonParser wires the default registry with the Python extractor.
func NewPythonParser() (*Parser, error) {
	loader, err := NewGrammarLoader()
	if err != nil {
		return nil, err
	}
	p := NewParser(loader)
	p.RegisterExtractor("python", &PythonExtractor{})
	return p, nil
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// ParseFile parses content into a File. Malformed source is not an error:
// the returned File carries a SyntaxError and no imports. Errors are
// reserved for content that never reaches the grammar.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "no extractor registered"), errors.CtxLanguage, lang)
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "grammar not loaded"), errors.CtxLanguage, lang)
	}

	if !utf8.Valid(content) {
		return nil, errors.New(errors.CodeEncoding, "'utf-8' codec can't decode file content: invalid UTF-8 sequence")
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, errors.New(errors.CodeEncoding, "source code string cannot contain null bytes")
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	pool := p.poolFor(lang, grammar)
	parser := pool.Get()
	defer pool.Put(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if syntax := locateSyntaxError(root, content); syntax != nil {
		return &File{
			Path:     path,
			Language: lang,
			Syntax:   syntax,
			ParsedAt: time.Now(),
		}, nil
	}

	res, err := extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func (p *Parser) poolFor(lang string, grammar *sitter.Language) *ParserPool {
	p.poolsMu.Lock()
	defer p.poolsMu.Unlock()
	pool, ok := p.pools[lang]
	if !ok {
		pool = NewParserPool(grammar)
		p.pools[lang] = pool
	}
	return pool
}

func (p *Parser) detectLanguage(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := p.filenames[base]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.detectLanguage(filePath) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}
