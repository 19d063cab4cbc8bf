package user

import (
	"encoding/json"

	"github.com/pkg/errors"

	"pocketbook/redactor"
)

// legacyUser is the unversioned record shape from the system this replaces
type legacyUser struct {
	Uname  string
	Uemail string
	Upass  string
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	switch dataVersion {
	case "0":
		var record legacyUser
		err := json.Unmarshal(data, &record)
		return record, err
	case "1":
		var record User
		err := json.Unmarshal(data, &record)
		return record, err
	default:
		return nil, errors.Errorf("Unsupported users version: %q", dataVersion)
	}
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	switch dataVersion {
	case "0":
		legacy := data.(legacyUser)
		return "1", User{
			ID:       id,
			Name:     legacy.Uname,
			Email:    legacy.Uemail,
			Password: redactor.String(legacy.Upass),
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
