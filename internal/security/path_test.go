package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid relative path",
			path: "config/test.json",
		},
		{
			name: "valid absolute store path",
			path: "/data/data/com.android.providers.telephony/databases/mmssms.db",
		},
		{
			name: "path with dots in filename",
			path: "backups/mmssms..db",
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: true,
			errMsg:  "path cannot be empty",
		},
		{
			name:    "path with directory traversal",
			path:    "../../../etc/passwd",
			wantErr: true,
			errMsg:  "path contains directory traversal",
		},
		{
			name:    "path with embedded traversal",
			path:    "config/../../../etc/passwd",
			wantErr: true,
			errMsg:  "path contains directory traversal",
		},
		{
			name:    "path with NUL byte",
			path:    "mmssms.db\x00.txt",
			wantErr: true,
			errMsg:  "NUL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilePathWithBase(t *testing.T) {
	base := "/var/lib/smsbridge"

	assert.NoError(t, ValidateFilePathWithBase("fixtures/mmssms.db", base))
	assert.Error(t, ValidateFilePathWithBase("/etc/passwd", base))
	assert.Error(t, ValidateFilePathWithBase("../outside.db", base))
	assert.Error(t, ValidateFilePathWithBase("", base))
}
