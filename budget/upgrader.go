package budget

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// legacyBudget is the unversioned record shape from the system this replaces
type legacyBudget struct {
	Uid    string
	Catid  string
	Month  int
	Year   int
	Amount float64
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	switch dataVersion {
	case "0":
		var b legacyBudget
		err := json.Unmarshal(data, &b)
		return b, err
	case "1":
		var b Budget
		err := json.Unmarshal(data, &b)
		return b, err
	default:
		return nil, errors.Errorf("Unsupported budgets version: %q", dataVersion)
	}
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	switch dataVersion {
	case "0":
		legacy := data.(legacyBudget)
		return "1", Budget{
			ID:         id,
			Owner:      legacy.Uid,
			CategoryID: legacy.Catid,
			Month:      time.Month(legacy.Month),
			Year:       legacy.Year,
			Amount:     decimal.NewFromFloat(legacy.Amount),
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
