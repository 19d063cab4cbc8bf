package alert

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// legacyAlert is the unversioned record shape from the system this replaces
type legacyAlert struct {
	Uid     string
	Message string
	Seen    bool
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	switch dataVersion {
	case "0":
		var a legacyAlert
		err := json.Unmarshal(data, &a)
		return a, err
	case "1":
		var a Alert
		err := json.Unmarshal(data, &a)
		return a, err
	default:
		return nil, errors.Errorf("Unsupported alerts version: %q", dataVersion)
	}
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	switch dataVersion {
	case "0":
		legacy := data.(legacyAlert)
		return "1", Alert{
			ID:      id,
			Owner:   legacy.Uid,
			Message: legacy.Message,
			Read:    legacy.Seen,
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
