// Package lang serves the forum's translated strings from embedded YAML packs.
package lang

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed packs/*.yaml
var packsFS embed.FS

type Bundle struct {
	fallback string
	packs    map[string]map[string]string
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
	defaultErr    error
)

// Load parses every embedded pack. fallback is the language used when a key
// is missing in the requested one.
func Load(fallback string) (*Bundle, error) {
	entries, err := packsFS.ReadDir("packs")
	if err != nil {
		return nil, fmt.Errorf("failed to read language packs: %w", err)
	}

	b := &Bundle{fallback: fallback, packs: make(map[string]map[string]string)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		raw, err := packsFS.ReadFile("packs/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read language pack %s: %w", e.Name(), err)
		}
		strs := make(map[string]string)
		if err := yaml.Unmarshal(raw, &strs); err != nil {
			return nil, fmt.Errorf("failed to parse language pack %s: %w", e.Name(), err)
		}
		b.packs[strings.TrimSuffix(e.Name(), ".yaml")] = strs
	}

	if _, ok := b.packs[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q has no pack", fallback)
	}
	return b, nil
}

// Default returns the english-backed bundle, loaded once.
func Default() *Bundle {
	defaultOnce.Do(func() {
		defaultBundle, defaultErr = Load("english")
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultBundle
}

func (b *Bundle) Has(language string) bool {
	_, ok := b.packs[language]
	return ok
}

func (b *Bundle) Languages() []string {
	names := make([]string, 0, len(b.packs))
	for name := range b.packs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the string for key, falling back to the fallback language and
// finally to the key itself.
func (b *Bundle) Get(language, key string) string {
	if s, ok := b.packs[language][key]; ok {
		return s
	}
	if s, ok := b.packs[b.fallback][key]; ok {
		return s
	}
	return key
}

func (b *Bundle) Format(language, key string, args ...interface{}) string {
	s := b.Get(language, key)
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}
