package circuit

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/stemquest/fs"
)

var (
	levelsSchema     *jsonschema.Schema
	levelsSchemaErr  error
	levelsSchemaOnce sync.Once
)

type catalogFile struct {
	Levels []LevelSpec `yaml:"levels"`
}

func compileLevelsSchema() (*jsonschema.Schema, error) {
	levelsSchemaOnce.Do(func() {
		raw, err := appfs.FS.ReadFile(appfs.LevelsSchemaFile)
		if err != nil {
			levelsSchemaErr = errors.Wrap(err, "reading levels schema")
			return
		}
		c := jsonschema.NewCompiler()
		if err = c.AddResource(appfs.LevelsSchemaFile, bytes.NewReader(raw)); err != nil {
			levelsSchemaErr = errors.Wrap(err, "adding levels schema")
			return
		}
		levelsSchema, levelsSchemaErr = c.Compile(appfs.LevelsSchemaFile)
	})
	return levelsSchema, levelsSchemaErr
}

// validateAgainstSchema checks the raw YAML document against the catalog JSON schema.
func validateAgainstSchema(data []byte) error {
	schema, err := compileLevelsSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "decoding levels yaml")
	}
	// the schema validator wants JSON values (float64 numbers, string keyed maps)
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "converting levels yaml to json")
	}
	var jsonDoc interface{}
	if err = json.Unmarshal(raw, &jsonDoc); err != nil {
		return errors.Wrap(err, "converting levels yaml to json")
	}

	if err = schema.Validate(jsonDoc); err != nil {
		return errors.Wrap(err, "invalid level catalog")
	}
	return nil
}

// ParseCatalog decodes a YAML level catalog and validates it.
func ParseCatalog(r io.Reader, validate *validator.Validate) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading level catalog")
	}
	if err = validateAgainstSchema(data); err != nil {
		return nil, err
	}

	var file catalogFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decoding level catalog")
	}
	for _, lvl := range file.Levels {
		if err = validate.Struct(lvl); err != nil {
			return nil, errors.Wrapf(err, "level %q", lvl.ID)
		}
	}
	return NewCatalog(file.Levels...)
}

// LoadCatalog reads the catalog at path, or the built-in one when path is empty.
func LoadCatalog(path string, validate *validator.Validate) (*Catalog, error) {
	var r io.ReadCloser
	var err error
	if path == "" {
		r, err = appfs.FS.Open(appfs.LevelsFile)
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening level catalog")
	}
	defer func() { _ = r.Close() }()
	return ParseCatalog(r, validate)
}
