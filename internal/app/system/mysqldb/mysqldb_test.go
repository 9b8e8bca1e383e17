package mysqldb

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		in      Params
		want    []string // substrings
		wantErr bool
	}{
		{
			name: "discrete fields",
			in:   Params{Host: "db", Port: 3307, User: "app", Password: "pw", Database: "clubs_db"},
			want: []string{"app:pw@tcp(db:3307)/clubs_db", "parseTime=true"},
		},
		{
			name: "defaults host and port",
			in:   Params{User: "root", Database: "clubs_db"},
			want: []string{"root@tcp(127.0.0.1:3306)/clubs_db"},
		},
		{
			name: "url wins over fields",
			in:   Params{URL: "mysql://u:p@example.com:4000/railway", Host: "ignored", Database: "ignored"},
			want: []string{"u:p@tcp(example.com:4000)/railway"},
		},
		{
			name: "url default port",
			in:   Params{URL: "mysql://u:p@example.com/railway"},
			want: []string{"tcp(example.com:3306)/railway"},
		},
		{
			name:    "url wrong scheme",
			in:      Params{URL: "postgres://u:p@h/db"},
			wantErr: true,
		},
		{
			name:    "missing database",
			in:      Params{Host: "db"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got DSN %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DSN: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("DSN = %q, missing %q", got, w)
				}
			}
		})
	}
}
