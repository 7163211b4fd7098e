package hibp

import (
	"strings"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// breachJSON is the wire shape of one breach record from the v3 API.
type breachJSON struct {
	Name         string   `json:"Name"`
	Title        string   `json:"Title"`
	Domain       string   `json:"Domain"`
	BreachDate   string   `json:"BreachDate"`
	PwnCount     int      `json:"PwnCount"`
	Description  string   `json:"Description"`
	DataClasses  []string `json:"DataClasses"`
	IsVerified   bool     `json:"IsVerified"`
	IsSensitive  bool     `json:"IsSensitive"`
	IsStealerLog bool     `json:"IsStealerLog"`
}

// pasteJSON is the wire shape of one paste record.
type pasteJSON struct {
	Source     string `json:"Source"`
	ID         string `json:"Id"`
	Title      string `json:"Title"`
	Date       string `json:"Date"`
	EmailCount int    `json:"EmailCount"`
}

// toModel maps the untrusted wire record into the typed domain record. This
// is the single boundary where external JSON is normalized; business logic
// never touches the wire shape.
func (b breachJSON) toModel() model.BreachRecord {
	record := model.BreachRecord{
		Name:         b.Name,
		Title:        b.Title,
		Domain:       b.Domain,
		Date:         b.BreachDate,
		PwnCount:     b.PwnCount,
		IsVerified:   b.IsVerified,
		IsSensitive:  b.IsSensitive,
		IsStealerLog: b.IsStealerLog,
		DataClasses:  b.DataClasses,
	}

	if record.ExposedPasswords() {
		record.PasswordExposure = ClassifyPasswordExposure(b.Description)
	}

	return record
}

// ClassifyPasswordExposure infers how passwords were stored in a breach from
// its free-text description. Order matters: the more specific storage terms
// are checked before the generic "encrypted"/"hashed" catch-alls.
func ClassifyPasswordExposure(description string) model.PasswordExposureType {
	desc := strings.ToLower(description)

	switch {
	case strings.Contains(desc, "plain text"), strings.Contains(desc, "plaintext"):
		return model.ExposurePlaintext
	case strings.Contains(desc, "bcrypt"):
		return model.ExposureBcrypt
	case strings.Contains(desc, "sha-1"), strings.Contains(desc, "sha1"):
		return model.ExposureSHA1
	case strings.Contains(desc, "sha-256"), strings.Contains(desc, "sha256"):
		return model.ExposureSHA256
	case strings.Contains(desc, "md5"):
		return model.ExposureMD5
	case strings.Contains(desc, "encrypted"):
		return model.ExposureEncrypted
	case strings.Contains(desc, "hashed"):
		return model.ExposureHashedUnknown
	default:
		return model.ExposureUnknown
	}
}
