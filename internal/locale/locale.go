// Package locale holds the translated strings shown by report criteria.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when nothing better matches
const DefaultLanguage = "en_GB"

//go:embed catalogs/*.yaml
var catalogFiles embed.FS

type catalogFile struct {
	Language string                       `yaml:"language"`
	Core     map[string]string            `yaml:"core"`
	Plugin   map[string]map[string]string `yaml:"plugin_reports"`
}

// flatten turns plugin sections into "plugin_reports.<section>.<key>" keys
func (f catalogFile) flatten() map[string]string {
	out := make(map[string]string, len(f.Core))
	for k, v := range f.Core {
		out[k] = v
	}
	for section, entries := range f.Plugin {
		for k, v := range entries {
			out[PluginKey(section, k)] = v
		}
	}
	return out
}

// PluginKey builds the key of a plugin string, e.g. PluginKey("config", "1")
func PluginKey(section, key string) string {
	return "plugin_reports." + section + "." + key
}

// Catalog is the set of loaded string tables
type Catalog struct {
	names   []string
	tags    []language.Tag
	strings map[language.Tag]map[string]string
	builder *catalog.Builder
	matcher language.Matcher
}

var (
	defaultCatalog *Catalog
	defaultErr     error
	defaultOnce    sync.Once
)

// Load returns the catalog built from the embedded string tables
func Load() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = loadFS(catalogFiles, "catalogs")
	})
	return defaultCatalog, defaultErr
}

// Default returns a translator for DefaultLanguage
func Default() *Translator {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("locale: embedded catalogs are invalid: %v", err))
	}
	return c.Translator(DefaultLanguage)
}

func loadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}

	files := map[string]map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", entry.Name(), err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", entry.Name(), err)
		}
		if file.Language == "" {
			file.Language = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		files[file.Language] = file.flatten()
	}

	base, ok := files[DefaultLanguage]
	if !ok {
		return nil, fmt.Errorf("missing %s catalog", DefaultLanguage)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if name != DefaultLanguage {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{DefaultLanguage}, names...)

	c := &Catalog{
		names:   names,
		strings: map[language.Tag]map[string]string{},
		builder: catalog.NewBuilder(catalog.Fallback(parseTag(DefaultLanguage))),
	}

	for _, name := range names {
		tag := parseTag(name)
		table := files[name]
		// untranslated keys fall back to the default table
		for k, v := range base {
			if _, ok := table[k]; !ok {
				table[k] = v
			}
		}
		for k, v := range table {
			if err := c.builder.SetString(tag, k, v); err != nil {
				return nil, fmt.Errorf("failed to register %s/%s: %w", name, k, err)
			}
		}
		c.tags = append(c.tags, tag)
		c.strings[tag] = table
	}

	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func parseTag(name string) language.Tag {
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return language.Und
	}
	return tag
}

// Languages returns the available languages, default first
func (c *Catalog) Languages() []string {
	return append([]string{}, c.names...)
}

// Translator returns a translator for the closest available language
func (c *Catalog) Translator(lang string) *Translator {
	idx := 0
	if lang != "" {
		if tag := parseTag(lang); tag != language.Und {
			_, i, confidence := c.matcher.Match(tag)
			if confidence != language.No {
				idx = i
			}
		}
	}

	tag := c.tags[idx]
	return &Translator{
		name:    c.names[idx],
		strings: c.strings[tag],
		printer: message.NewPrinter(tag, message.Catalog(c.builder)),
	}
}

// Translator looks strings up in one language
type Translator struct {
	name    string
	strings map[string]string
	printer *message.Printer
}

// Language returns the language name, e.g. de_DE
func (t *Translator) Language() string {
	return t.name
}

// T returns the translation of key, or key itself when untranslated
func (t *Translator) T(key string) string {
	if s, ok := t.strings[key]; ok {
		return s
	}
	return key
}

// Sprintf formats with a translated format string
func (t *Translator) Sprintf(format string, args ...any) string {
	return t.printer.Sprintf(format, args...)
}
