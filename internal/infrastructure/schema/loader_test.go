package schema

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/scoring-service/internal/domain/service"
)

func TestLoad_BundledDescriptorMatchesDefault(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "..", "schema", "credit-risk-v1.yaml"))
	require.NoError(t, err)
	assert.Equal(t, service.DefaultFeatureSchema(), s)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, service.DefaultSchemaVersion, s.Version)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "empty", doc: "", wantErr: "empty document"},
		{name: "unknown key", doc: "version: v\nfeatures:\n  - name: age\n    kind: numeric\n    unit: years\n", wantErr: "unit"},
		{name: "no version", doc: "features:\n  - name: age\n    kind: numeric\n", wantErr: "version is required"},
		{name: "unknown kind", doc: "version: v\nfeatures:\n  - name: age\n    kind: text\n", wantErr: "unknown kind"},
		{name: "categorical without categories", doc: "version: v\nfeatures:\n  - name: profession\n    kind: categorical\n", wantErr: "no categories"},
		{name: "duplicate", doc: "version: v\nfeatures:\n  - name: age\n    kind: numeric\n  - name: age\n    kind: numeric\n", wantErr: "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
