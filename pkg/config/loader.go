package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

type sourceFile struct {
	path   string
	parser koanf.Parser
}

type formatDef struct {
	ext    string
	parser koanf.Parser
}

func supportedFormats() []formatDef {
	return []formatDef{
		{".yaml", yaml.Parser()},
		{".yml", yaml.Parser()},
		{".json", json.Parser()},
		{".toml", toml.Parser()},
	}
}

// discoverSourceFiles walks the configured directories in order, picking up
// every config file whose base name matches, in every supported format.
func (m *Module) discoverSourceFiles() []sourceFile {
	var files []sourceFile

	for _, dir := range m.config.ConfigDirs {
		for _, format := range supportedFormats() {
			path := filepath.Join(dir, m.config.ConfigName+format.ext)
			if _, err := os.Stat(path); err == nil {
				files = append(files, sourceFile{
					path:   path,
					parser: format.parser,
				})
			}
		}
	}

	return files
}

func (m *Module) loadSourceFiles(k *koanf.Koanf) error {
	m.sourceFiles = m.discoverSourceFiles()

	for _, sf := range m.sourceFiles {
		if err := k.Load(file.Provider(sf.path), sf.parser); err != nil {
			return oops.Wrapf(err, "failed to load config file: %s", sf.path)
		}
	}

	return nil
}
