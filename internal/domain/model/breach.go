package model

import (
	"sort"
	"strings"
)

// PasswordExposureType describes how passwords were stored in a breach,
// inferred from the breach description.
type PasswordExposureType string

const (
	ExposurePlaintext     PasswordExposureType = "plaintext"
	ExposureBcrypt        PasswordExposureType = "bcrypt_hash"
	ExposureSHA1          PasswordExposureType = "sha1_hash"
	ExposureSHA256        PasswordExposureType = "sha256_hash"
	ExposureMD5           PasswordExposureType = "md5_hash"
	ExposureEncrypted     PasswordExposureType = "encrypted"
	ExposureHashedUnknown PasswordExposureType = "hashed_unknown"
	ExposureUnknown       PasswordExposureType = "unknown"
)

// BreachRecord is one breach an account appeared in.
type BreachRecord struct {
	Name             string               `json:"name"`
	Title            string               `json:"title"`
	Domain           string               `json:"domain,omitempty"`
	Date             string               `json:"date"` // breach date, YYYY-MM-DD
	PwnCount         int                  `json:"pwn_count"`
	IsVerified       bool                 `json:"is_verified"`
	IsSensitive      bool                 `json:"is_sensitive"`
	IsStealerLog     bool                 `json:"is_stealer_log"`
	DataClasses      []string             `json:"data_classes,omitempty"`
	PasswordExposure PasswordExposureType `json:"password_exposure,omitempty"`
}

// ExposedPasswords reports whether the breach leaked password data.
func (b BreachRecord) ExposedPasswords() bool {
	for _, dc := range b.DataClasses {
		if dc == "Passwords" {
			return true
		}
	}
	return false
}

// PasteHit is one public paste an account appeared in.
type PasteHit struct {
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
	Date       string `json:"date,omitempty"`
	EmailCount int    `json:"email_count,omitempty"`
}

// AccountFindings aggregates everything found for one checked account:
// breaches, the subset that exposed passwords, stealer-log captures, pastes,
// and the merged set of leaked data classes.
type AccountFindings struct {
	Identifier        string         `json:"identifier"`
	Breaches          []BreachRecord `json:"breaches,omitempty"`
	PasswordExposedIn []BreachRecord `json:"password_exposed_in,omitempty"`
	StealerLogs       []BreachRecord `json:"stealer_logs,omitempty"`
	CompromisedSites  []string       `json:"compromised_sites,omitempty"`
	CriticalSites     []string       `json:"critical_sites,omitempty"`
	Pastes            []PasteHit     `json:"pastes,omitempty"`
	DataClasses       []string       `json:"data_classes,omitempty"`
	Error             string         `json:"error,omitempty"`
}

// Categorize fills the derived views (password exposures, stealer logs,
// critical sites, merged data classes) from the raw breach and site lists.
func (f *AccountFindings) Categorize() {
	f.PasswordExposedIn = nil
	f.StealerLogs = nil
	classes := make(map[string]struct{})

	for _, b := range f.Breaches {
		if b.ExposedPasswords() {
			f.PasswordExposedIn = append(f.PasswordExposedIn, b)
		}
		if b.IsStealerLog {
			f.StealerLogs = append(f.StealerLogs, b)
		}
		for _, dc := range b.DataClasses {
			classes[dc] = struct{}{}
		}
	}

	f.DataClasses = make([]string, 0, len(classes))
	for dc := range classes {
		f.DataClasses = append(f.DataClasses, dc)
	}
	sort.Strings(f.DataClasses)

	f.CriticalSites = CriticalSites(f.CompromisedSites)
}

// criticalSitePatterns marks high-value services: financial, cloud, identity
// providers, and registrars. A stealer-log capture for one of these warrants
// immediate action.
var criticalSitePatterns = []string{
	"bank", "paypal", "amazon", "google", "microsoft", "apple",
	"facebook", "twitter", "linkedin", "github", "gitlab",
	"aws", "azure", "digitalocean", "cloudflare", "namecheap",
	"godaddy", "stripe", "square", "venmo", "cashapp",
}

// CriticalSites returns the subset of domains matching a critical-site
// pattern, preserving input order.
func CriticalSites(domains []string) []string {
	var critical []string
	for _, domain := range domains {
		lower := strings.ToLower(domain)
		for _, pattern := range criticalSitePatterns {
			if strings.Contains(lower, pattern) {
				critical = append(critical, domain)
				break
			}
		}
	}
	return critical
}
