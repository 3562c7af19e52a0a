package exitcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrDataDir, "bad data dir")
	if err.Code != ErrDataDir {
		t.Errorf("Code = %d, want %d", err.Code, ErrDataDir)
	}
	if err.Message != "bad data dir" {
		t.Errorf("Message = %q, want %q", err.Message, "bad data dir")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrConfig, "decode failed", cause)

	if err.Code != ErrConfig {
		t.Errorf("Code = %d, want %d", err.Code, ErrConfig)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap should preserve cause for errors.Is")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrDataDir, "data directory missing"),
			want: "data directory missing",
		},
		{
			name: "with cause",
			err:  Wrap(ErrConfig, "decode failed", errors.New("bad toml")),
			want: "decode failed: bad toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"coded error", New(ErrDataDir, "missing"), ErrDataDir},
		{"wrapped coded", Wrap(ErrAlreadyRunning, "locked", errors.New("flock")), ErrAlreadyRunning},
		{"plain error", errors.New("plain"), ErrGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrAlreadyRunning, "locked")

	if !Is(err, ErrAlreadyRunning) {
		t.Error("Is should return true for matching code")
	}
	if Is(err, ErrDataDir) {
		t.Error("Is should return false for non-matching code")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrUsage, "invalid flag: %s", "--bogus")
	if err.Code != ErrUsage {
		t.Errorf("Code = %d, want %d", err.Code, ErrUsage)
	}
	want := "invalid flag: --bogus"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "AlreadyRunning",
			err:      AlreadyRunning("/home/user/.noted"),
			wantCode: ErrAlreadyRunning,
			wantMsg:  "another instance is already running against /home/user/.noted",
		},
		{
			name:     "DataDir",
			err:      DataDir("/home/user/.noted", errors.New("permission denied")),
			wantCode: ErrDataDir,
			wantMsg:  "data directory /home/user/.noted: permission denied",
		},
		{
			name:     "Config",
			err:      Config("/home/user/.noted/config.toml", errors.New("bad duration")),
			wantCode: ErrConfig,
			wantMsg:  "config file /home/user/.noted/config.toml: bad duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestCodeWithWrappedErrors(t *testing.T) {
	original := AlreadyRunning("/data")
	wrapped := fmt.Errorf("failed to process: %w", original)
	doubleWrapped := fmt.Errorf("operation failed: %w", wrapped)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"original", original, ErrAlreadyRunning},
		{"single wrapped", wrapped, ErrAlreadyRunning},
		{"double wrapped", doubleWrapped, ErrAlreadyRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsWithWrappedErrors(t *testing.T) {
	original := DataDir("/data", errors.New("EACCES"))
	wrapped := fmt.Errorf("cannot start: %w", original)

	if !Is(wrapped, ErrDataDir) {
		t.Error("Is should work with wrapped errors")
	}
	if Is(wrapped, ErrAlreadyRunning) {
		t.Error("Is should return false for non-matching wrapped errors")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrConfig, "decode failed", cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("errors.Unwrap should work with Error")
	}

	errNoCause := New(ErrDataDir, "missing")
	if errNoCause.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestConvenienceConstructorsWithCode(t *testing.T) {
	constructors := []struct {
		name string
		err  error
		want int
	}{
		{"AlreadyRunning", AlreadyRunning("x"), ErrAlreadyRunning},
		{"DataDir", DataDir("x", errors.New("e")), ErrDataDir},
		{"Config", Config("x", errors.New("e")), ErrConfig},
	}

	for _, tt := range constructors {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorInterface(t *testing.T) {
	var _ error = &Error{}
	var _ error = New(ErrGeneral, "test")
	var _ error = Wrap(ErrGeneral, "test", nil)
	var _ error = AlreadyRunning("test")
}

func TestWrapf(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(ErrDataDir, cause, "failed to create %s", "/data")

	if err.Code != ErrDataDir {
		t.Errorf("Code = %d, want %d", err.Code, ErrDataDir)
	}
	wantMsg := "failed to create /data"
	if err.Message != wantMsg {
		t.Errorf("Message = %q, want %q", err.Message, wantMsg)
	}
	if err.Cause != cause {
		t.Error("Wrapf should preserve cause")
	}
	wantErr := "failed to create /data: connection refused"
	if err.Error() != wantErr {
		t.Errorf("Error() = %q, want %q", err.Error(), wantErr)
	}
}
