package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, r *HandleResolver, fullName string) *SponsorName {
	t.Helper()

	name, ok := r.Resolve(fullName)
	require.True(t, ok, "expected %q to parse", fullName)
	return name
}

func TestResolveTableHit(t *testing.T) {
	r := NewHandleResolver(map[string]string{
		"Schatz, Brian":             "@brianschatz",
		"Wasserman Schultz, Debbie": "@RepDWS",
	})

	name := resolved(t, r, "Sen. Schatz, Brian [D-HI]")
	assert.Equal(t, "@brianschatz", name.Handle)
	assert.Equal(t, "Sen.", name.Position)
	assert.Equal(t, "Schatz", name.LastName)

	name = resolved(t, r, "Rep. Wasserman Schultz, Debbie [D-FL-23]")
	assert.Equal(t, "@RepDWS", name.Handle)
	assert.Equal(t, "Wasserman Schultz", name.LastName)
}

func TestResolveNoTableEntry(t *testing.T) {
	r := NewHandleResolver(nil)

	name := resolved(t, r, "Sen. Schatz, Brian [D-HI]")
	assert.Equal(t, "", name.Handle)
	assert.Equal(t, "Sen.", name.Position)
	assert.Equal(t, "Schatz", name.LastName)

	name = resolved(t, r, "Rep. Lieu, Ted [D-CA-33]")
	assert.Equal(t, "Rep.", name.Position)
	assert.Equal(t, "Lieu", name.LastName)

	name = resolved(t, r, "Sen. Van Hollen, Chris [D-MD]")
	assert.Equal(t, "Van Hollen", name.LastName)
}

func TestResolveDiacritics(t *testing.T) {
	r := NewHandleResolver(map[string]string{
		"Menendez, Robert": "@SenatorMenendez",
	})

	// The sponsor name folds to the table key.
	name := resolved(t, r, "Sen. Menéndez, Robert [D-NJ]")
	assert.Equal(t, "@SenatorMenendez", name.Handle)

	// And an accented table key folds to match a plain sponsor name.
	r = NewHandleResolver(map[string]string{
		"Velázquez, Nydia": "@NydiaVelazquez",
	})
	name = resolved(t, r, "Rep. Velazquez, Nydia M. [D-NY-7]")
	assert.Equal(t, "@NydiaVelazquez", name.Handle)
}

func TestResolveUnparseableName(t *testing.T) {
	r := NewHandleResolver(nil)

	_, ok := r.Resolve("Commission on Enhancing National Cybersecurity")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestLoadHandleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
"Schatz, Brian": "@brianschatz"
"Lieu, Ted": "@tedlieu"
`), 0o644))

	table, err := LoadHandleTable(path)
	require.NoError(t, err)
	assert.Equal(t, "@brianschatz", table["Schatz, Brian"])
	assert.Equal(t, "@tedlieu", table["Lieu, Ted"])
}

func TestLoadHandleTableMissing(t *testing.T) {
	_, err := LoadHandleTable(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handles: read")
}
