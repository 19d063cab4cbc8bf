package category

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// legacyCategory is the unversioned record shape from the system this replaces
type legacyCategory struct {
	Catname string
	Cattype string
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	switch dataVersion {
	case "0":
		var c legacyCategory
		err := json.Unmarshal(data, &c)
		return c, err
	case "1":
		var c Category
		err := json.Unmarshal(data, &c)
		return c, err
	default:
		return nil, errors.Errorf("Unsupported categories version: %q", dataVersion)
	}
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	switch dataVersion {
	case "0":
		legacy := data.(legacyCategory)
		return "1", Category{
			ID:   id,
			Name: legacy.Catname,
			Kind: Kind(strings.ToLower(legacy.Cattype)),
		}, nil
	default:
		return dataVersion, data, nil
	}
}

func (u *storeUpgrader) ParseLegacy(legacyData json.RawMessage) (string, map[string]json.RawMessage, error) {
	var data map[string]json.RawMessage
	err := json.Unmarshal(legacyData, &data)
	return "0", data, err
}
