package elevmetadata

import (
	"encoding/json"

	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

// BankMetaData describes one simulated elevator bank, logged at startup so
// a trace can be tied back to the build and configuration that produced it.
type BankMetaData struct {
	SoftwareVersion string `json:"software_version"`
	Identifier      string `json:"identifier"`
	FloorCount      int    `json:"floor_count"`
	ElevatorCount   int    `json:"elevator_count"`
}

func (bankMetaData *BankMetaData) String() string {
	jsonData, err := json.Marshal(bankMetaData)

	if err != nil {
		Log.Error().Msg("Error Serialising BankMetaData Object to JSON")
		return ""
	}
	return string(jsonData)
}
