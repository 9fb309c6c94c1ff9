package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestClientOptions(t *testing.T) {
	assert.Empty(t, clientOptions(Config{ProjectID: "p"}, env(nil)), "default credentials")

	assert.Len(t, clientOptions(Config{CredentialsFile: "sa.json"}, env(nil)), 1)

	both := clientOptions(Config{CredentialsFile: "sa.json"}, env(map[string]string{ServiceAccountEnv: `{"type":"service_account"}`}))
	assert.Len(t, both, 1, "inline JSON replaces the file")
}
