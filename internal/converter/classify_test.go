package converter

import "testing"

func TestParseSlashCommand(t *testing.T) {
	text := "<command-message>init</command-message><command-name>/init</command-name>" +
		"<command-args>--force</command-args><command-contents>Analyze this codebase.</command-contents>"

	cmd, ok := parseSlashCommand(text)
	if !ok {
		t.Fatal("expected slash command to parse")
	}
	if cmd.Name != "/init" {
		t.Errorf("Name = %q, want %q", cmd.Name, "/init")
	}
	if cmd.Args != "--force" {
		t.Errorf("Args = %q, want %q", cmd.Args, "--force")
	}
	if cmd.Contents != "Analyze this codebase." {
		t.Errorf("Contents = %q", cmd.Contents)
	}
}

func TestParseSlashCommandJSONContents(t *testing.T) {
	text := "<command-name>/review</command-name>" +
		`<command-contents>{"type": "text", "text": "Review the diff."}</command-contents>`

	cmd, ok := parseSlashCommand(text)
	if !ok {
		t.Fatal("expected slash command to parse")
	}
	if cmd.Contents != "Review the diff." {
		t.Errorf("Contents = %q, want unwrapped JSON text", cmd.Contents)
	}
}

func TestParseSlashCommandAbsent(t *testing.T) {
	if _, ok := parseSlashCommand("just a normal message"); ok {
		t.Error("plain text should not parse as a slash command")
	}
}

func TestParseCommandOutput(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantStdout string
		wantMD     bool
		wantOK     bool
	}{
		{
			name:       "plain output",
			text:       "<local-command-stdout>hello world</local-command-stdout>",
			wantStdout: "hello world",
			wantMD:     false,
			wantOK:     true,
		},
		{
			name:       "markdown output",
			text:       "<local-command-stdout># Report\n\nAll good.</local-command-stdout>",
			wantStdout: "# Report\n\nAll good.",
			wantMD:     true,
			wantOK:     true,
		},
		{
			name:   "no tag",
			text:   "nothing here",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, isMD, ok := parseCommandOutput(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
			if isMD != tt.wantMD {
				t.Errorf("isMarkdown = %v, want %v", isMD, tt.wantMD)
			}
		})
	}
}

func TestParseBashOutput(t *testing.T) {
	stdout, stderr, ok := parseBashOutput("<bash-stdout>ok\n</bash-stdout><bash-stderr>warn</bash-stderr>")
	if !ok {
		t.Fatal("expected bash output to parse")
	}
	if stdout != "ok" {
		t.Errorf("stdout = %q, want %q", stdout, "ok")
	}
	if stderr != "warn" {
		t.Errorf("stderr = %q, want %q", stderr, "warn")
	}

	if _, _, ok := parseBashOutput("no tags"); ok {
		t.Error("text without tags should not parse as bash output")
	}
}

func TestShouldSkipText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"caveat banner", caveatPrefix + " ...", true},
		{"command invocation kept", "<command-message>go</command-message><command-name>/go</command-name>", false},
		{"command output kept", "<local-command-stdout>out</local-command-stdout>", false},
		{"bare command-name skipped", "<command-name>/clear</command-name>", true},
		{"plain prose kept", "Please fix the bug.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSkipText(tt.text); got != tt.want {
				t.Errorf("shouldSkipText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestUsableAsSessionStarter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain request", "Add a login page", true},
		{"warmup ping", "Warmup", false},
		{"caveat banner", caveatPrefix + " etc", false},
		{"slash command", "<command-message>x</command-message><command-name>/clear</command-name>", false},
		{"init command", "<command-message>init</command-message><command-name>init</command-name>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usableAsSessionStarter(tt.text); got != tt.want {
				t.Errorf("usableAsSessionStarter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionPreviewInit(t *testing.T) {
	text := "<command-name>init</command-name><command-contents>Please analyze</command-contents>"
	got := sessionPreview(text)
	want := "Claude Initializes Codebase Documentation Guide (/init command)"
	if got != want {
		t.Errorf("sessionPreview = %q, want %q", got, want)
	}
}

func TestSessionPreviewTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "0123456789"
	}
	got := sessionPreview(long)
	if len([]rune(got)) != firstUserMessagePreviewLength+3 {
		t.Errorf("preview length = %d runes, want %d plus ellipsis", len([]rune(got)), firstUserMessagePreviewLength)
	}
}
