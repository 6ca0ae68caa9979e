package postgresadapter

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// UUIDGenerator issues record ids of the form <uuid-hex>@<domain>.
type UUIDGenerator struct {
	Domain string
}

func (g UUIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	if g.Domain == "" {
		return hex, nil
	}
	return hex + "@" + g.Domain, nil
}
