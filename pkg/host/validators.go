package host

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/aretw0/greenscreen/pkg/domain"
)

func validateCredentials(cfg *domain.NavigationConfig, submitted map[string]string) (map[string]string, string) {
	user := submitted["user_id"]
	password := submitted["password"]
	for _, c := range cfg.Credentials {
		userOK := strings.EqualFold(c.UserID, user)
		passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
		if userOK && passOK {
			return nil, ""
		}
	}
	return nil, MsgInvalidCredentials
}

// entityLookup merges the record keyed by the submitted key field into the session.
func entityLookup(entity string) Validator {
	return func(cfg *domain.NavigationConfig, submitted map[string]string) (map[string]string, string) {
		table := cfg.Entities[entity]
		notFound := table.NotFound
		if notFound == "" {
			notFound = fmt.Sprintf("%s NOT FOUND", strings.ToUpper(entity))
		}
		record, ok := table.Records[submitted[table.Key]]
		if !ok {
			return nil, notFound
		}
		out := make(map[string]string, len(record))
		for k, v := range record {
			out[k] = v
		}
		return out, ""
	}
}
