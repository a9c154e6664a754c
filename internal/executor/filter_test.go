package executor

import "testing"

func TestInterestingLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"[INFO] BUILD SUCCESS", true},
		{"[INFO] BUILD FAILURE", true},
		{"[ERROR] Failed to execute goal", true},
		{"Tests run: 12, Failures: 0", true},
		{"ELIFECYCLE Command failed with exit code 1.", true},
		{"src/index.ts(4,1): error TS2304: Cannot find name 'x'.", true},
		{"[INFO] Downloading from central: https://...", false},
		{"Progress (1): 12 kB", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := interestingLine(tt.line); got != tt.want {
			t.Errorf("interestingLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestLastErrorLine(t *testing.T) {
	output := "[INFO] Compiling module\n[ERROR] cannot find symbol Foo\n[INFO] BUILD FAILURE\n[INFO] Total time: 3 s\n"
	got := lastErrorLine(output)
	if got != "[INFO] BUILD FAILURE" {
		t.Errorf("lastErrorLine = %q", got)
	}

	if got := lastErrorLine("all fine\n"); got != "" {
		t.Errorf("lastErrorLine on clean output = %q, want empty", got)
	}
}
