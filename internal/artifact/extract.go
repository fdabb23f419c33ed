package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/mmdcheck/internal/fileutil"
	"github.com/harrison/mmdcheck/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DocumentExtensions are the file types scanned when extracting from directories.
var DocumentExtensions = []string{".md", ".markdown", ".mdx"}

// Extractor pulls diagram code blocks out of Markdown documents.
type Extractor struct {
	markdown  goldmark.Markdown
	languages map[string]bool
}

// NewExtractor creates an Extractor for fenced blocks tagged with one of
// languages (case-insensitive). No languages means "mermaid".
func NewExtractor(languages ...string) *Extractor {
	if len(languages) == 0 {
		languages = []string{"mermaid"}
	}
	set := make(map[string]bool, len(languages))
	for _, l := range languages {
		set[strings.ToLower(l)] = true
	}
	return &Extractor{
		markdown:  goldmark.New(),
		languages: set,
	}
}

// Extract returns one artifact per matching fenced code block in source.
// IDs are "<name>#<n>" with n counting from 1 within the document; titles
// are the text of the closest preceding heading, or name when there is none.
func (e *Extractor) Extract(name string, source []byte) []models.Artifact {
	doc := e.markdown.Parser().Parse(text.NewReader(source))

	var artifacts []models.Artifact
	heading := ""

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			heading = strings.TrimSpace(plainText(node, source))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if !e.languages[strings.ToLower(string(node.Language(source)))] {
				return ast.WalkSkipChildren, nil
			}
			title := heading
			if title == "" {
				title = filepath.Base(name)
			}
			artifacts = append(artifacts, models.Artifact{
				ID:     fmt.Sprintf("%s#%d", name, len(artifacts)+1),
				Title:  title,
				Source: blockContent(node, source),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return artifacts
}

// Documents returns the Markdown documents found under paths (files or
// directories), sorted and deduplicated.
func (e *Extractor) Documents(paths []string) ([]string, error) {
	scan, err := fileutil.CollectFiles(paths, fileutil.ScanOptions{
		Extensions:  DocumentExtensions,
		Recursive:   true,
		ExcludeDirs: []string{"node_modules", "vendor"},
	})
	if err != nil {
		return nil, err
	}
	return scan.Files, nil
}

// ExtractDocument reads file and extracts its diagrams. IDs use the path
// relative to baseDir when file lies inside it.
func (e *Extractor) ExtractDocument(file, baseDir string) ([]models.Artifact, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	name := file
	if r, err := filepath.Rel(absBase, file); err == nil && !strings.HasPrefix(r, "..") {
		name = r
	}
	return e.Extract(filepath.ToSlash(name), data), nil
}

// ExtractFiles scans paths (files or directories) for Markdown documents and
// extracts their diagrams. Artifact IDs use paths relative to baseDir.
func (e *Extractor) ExtractFiles(paths []string, baseDir string) ([]models.Artifact, error) {
	files, err := e.Documents(paths)
	if err != nil {
		return nil, err
	}

	artifacts := []models.Artifact{}
	for _, file := range files {
		found, err := e.ExtractDocument(file, baseDir)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, found...)
	}
	return artifacts, nil
}

// blockContent joins the raw lines of a code block.
func blockContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// plainText collects the text of n and its inline descendants.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(plainText(c, source))
		}
	}
	return buf.String()
}
