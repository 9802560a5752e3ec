package biscuit

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ReadOptions reads jar Options from a YAML file. If the file does not
// exist it is created with the default options.
func ReadOptions(path string) (*Options, error) {
	opt := new(Options)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data, err = yaml.Marshal(opt)
		if err != nil {
			return nil, err
		}
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err = os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		return opt, nil
	}
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, opt); err != nil {
		return nil, err
	}
	return opt, nil
}
