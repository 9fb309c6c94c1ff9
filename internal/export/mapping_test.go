package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

func TestDefaultMapping_IsValid(t *testing.T) {
	m := DefaultMapping()
	require.NotEmpty(t, m.Columns)
	require.NotEmpty(t, m.Summary)

	acc, ok := m.Columns[0].Accessor(domain.LevelTactic)
	require.True(t, ok)
	assert.Equal(t, "TC_Label", acc.Source)
}

func TestParseMapping_RejectsInvalidTables(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"duplicate column": {
			yaml: "columns:\n  - {name: Budget, levels: {tactic: TC_Budget}}\n  - {name: Budget, levels: {section: SECTION_Budget}}\n",
			want: `column "Budget": duplicate column`,
		},
		"unknown level": {
			yaml: "columns:\n  - {name: Budget, levels: {campaign: CA_Budget}}\n",
			want: `unknown hierarchy level "campaign"`,
		},
		"no level mapped": {
			yaml: "columns:\n  - {name: Budget}\n",
			want: "no level is mapped",
		},
		"reserved name": {
			yaml: "columns:\n  - {name: Tactic, levels: {tactic: TC_Label}}\n",
			want: "reserved",
		},
		"empty field": {
			yaml: "columns:\n  - {name: Budget, levels: {tactic: \"\"}}\n",
			want: "empty field",
		},
		"summary without field": {
			yaml: "summary:\n  - {header: Budget}\n",
			want: "summary[0]",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMapping([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseMapping_ReportsAllProblems(t *testing.T) {
	_, err := ParseMapping([]byte("columns:\n  - {name: A}\n  - {name: B}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "A"`)
	assert.Contains(t, err.Error(), `column "B"`)
}

func TestLoadMapping_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  - name: Publisher\n    levels:\n      Tactic: TC_Publisher\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Publisher"}, m.Headers())

	_, ok := m.Columns[0].Accessor(domain.LevelPlacement)
	assert.False(t, ok)
}

func TestLoadMapping_MissingFile(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
