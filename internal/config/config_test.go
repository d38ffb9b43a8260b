package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalPath(t *testing.T) {
	tests := []struct {
		name        string
		xdgConfig   string
		wantContain string
	}{
		{
			name:        "with XDG_CONFIG_HOME set",
			xdgConfig:   "/custom/config",
			wantContain: "/custom/config/transcriptr/transcriptr.yml",
		},
		{
			name:        "without XDG_CONFIG_HOME",
			xdgConfig:   "",
			wantContain: ".config/transcriptr/transcriptr.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original
			origXDG := os.Getenv("XDG_CONFIG_HOME")
			defer func() {
				if origXDG != "" {
					_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
				} else {
					_ = os.Unsetenv("XDG_CONFIG_HOME")
				}
			}()

			// Set test value
			if tt.xdgConfig != "" {
				_ = os.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			} else {
				_ = os.Unsetenv("XDG_CONFIG_HOME")
			}

			got := GlobalPath()
			if tt.xdgConfig != "" {
				// When XDG is set, path should be exactly as expected
				if got != tt.wantContain {
					t.Errorf("GlobalPath() = %v, want %v", got, tt.wantContain)
				}
			} else {
				// When XDG not set, should contain .config/transcriptr/transcriptr.yml
				if !filepath.IsAbs(got) {
					t.Errorf("GlobalPath() should return absolute path, got %v", got)
				}
				if filepath.Base(got) != "transcriptr.yml" {
					t.Errorf("GlobalPath() should end with transcriptr.yml, got %v", got)
				}
			}
		})
	}
}

func TestProjectPath(t *testing.T) {
	got := ProjectPath()
	want := "transcriptr.yml"
	if got != want {
		t.Errorf("ProjectPath() = %v, want %v", got, want)
	}
}

func TestExists(t *testing.T) {
	// Create temp directory for test
	tmpDir := t.TempDir()

	// Save and restore original working directory
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	// Change to temp directory
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}

	// Save original XDG
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		if origXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	// Set XDG to temp directory
	xdgDir := filepath.Join(tmpDir, "config")
	_ = os.Setenv("XDG_CONFIG_HOME", xdgDir)

	t.Run("no config exists", func(t *testing.T) {
		if Exists() {
			t.Error("Exists() = true, want false when no config files exist")
		}
	})

	t.Run("global config exists", func(t *testing.T) {
		// Create global config
		globalPath := GlobalPath()
		if err := os.MkdirAll(filepath.Dir(globalPath), 0755); err != nil {
			t.Fatalf("Failed to create global config dir: %v", err)
		}
		if err := os.WriteFile(globalPath, []byte("output_format: html\n"), 0644); err != nil {
			t.Fatalf("Failed to write global config: %v", err)
		}
		defer func() { _ = os.Remove(globalPath) }()

		if !Exists() {
			t.Error("Exists() = false, want true when global config exists")
		}
	})

	t.Run("project config exists", func(t *testing.T) {
		// Remove global config from previous test
		_ = os.Remove(GlobalPath())

		// Create project config
		projectPath := ProjectPath()
		if err := os.WriteFile(projectPath, []byte("output_format: md\n"), 0644); err != nil {
			t.Fatalf("Failed to write project config: %v", err)
		}
		defer func() { _ = os.Remove(projectPath) }()

		if !Exists() {
			t.Error("Exists() = false, want true when project config exists")
		}
	})
}

func TestWriteGlobal(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()

	// Save original XDG
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		if origXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	// Set XDG to temp directory
	xdgDir := filepath.Join(tmpDir, "config")
	_ = os.Setenv("XDG_CONFIG_HOME", xdgDir)

	cfg := &Config{
		ProjectsDir:       "/tmp/projects",
		OutputFormat:      "md",
		PageSize:          500,
		ImageExportMode:   "referenced",
		CacheEnabled:      false,
		DataDir:           ".test",
		CleanupPeriodDays: 7,
		LogLevel:          "debug",
		LogFile:           "/tmp/test.log",
	}

	err := WriteGlobal(cfg)
	if err != nil {
		t.Fatalf("WriteGlobal() error = %v", err)
	}

	// Verify file exists
	globalPath := GlobalPath()
	if _, err := os.Stat(globalPath); err != nil {
		t.Errorf("Config file not created at %s: %v", globalPath, err)
	}

	// Verify file content
	data, err := os.ReadFile(globalPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	content := string(data)
	expectedFields := []string{
		"projects_dir: /tmp/projects",
		"output_format: md",
		"page_size: 500",
		"image_export_mode: referenced",
		"cache_enabled: false",
		"data_dir: .test",
		"cleanup_period_days: 7",
		"log_level: debug",
		"log_file: /tmp/test.log",
	}

	for _, field := range expectedFields {
		if !contains(content, field) {
			t.Errorf("Config file missing expected field: %s\nContent:\n%s", field, content)
		}
	}
}

func TestWriteProject(t *testing.T) {
	// Create temp directory and change to it
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}

	cfg := &Config{
		ProjectsDir:  "/data/projects",
		OutputFormat: "html",
		PageSize:     2000,
		CacheEnabled: true,
		LogLevel:     "info",
	}

	err := WriteProject(cfg)
	if err != nil {
		t.Fatalf("WriteProject() error = %v", err)
	}

	// Verify file exists
	projectPath := ProjectPath()
	if _, err := os.Stat(projectPath); err != nil {
		t.Errorf("Config file not created at %s: %v", projectPath, err)
	}

	// Verify file content
	data, err := os.ReadFile(projectPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	content := string(data)
	expectedFields := []string{
		"projects_dir: /data/projects",
		"output_format: html",
		"page_size: 2000",
		"log_level: info",
	}

	for _, field := range expectedFields {
		if !contains(content, field) {
			t.Errorf("Config file missing expected field: %s\nContent:\n%s", field, content)
		}
	}
}

func TestLoad_NoConfig(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}

	// Save original XDG
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		if origXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	// Set XDG to temp directory
	xdgDir := filepath.Join(tmpDir, "config")
	_ = os.Setenv("XDG_CONFIG_HOME", xdgDir)

	// Clear env vars that would override defaults
	origFormat := os.Getenv("TRANSCRIPTR_OUTPUT_FORMAT")
	defer func() {
		if origFormat != "" {
			_ = os.Setenv("TRANSCRIPTR_OUTPUT_FORMAT", origFormat)
		}
	}()
	_ = os.Unsetenv("TRANSCRIPTR_OUTPUT_FORMAT")

	// Load should succeed even without config files (defaults)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.OutputFormat != "html" {
		t.Errorf("Load() default OutputFormat = %v, want html", cfg.OutputFormat)
	}
	if cfg.PageSize != 2000 {
		t.Errorf("Load() default PageSize = %v, want 2000", cfg.PageSize)
	}
	if cfg.CacheEnabled != true {
		t.Errorf("Load() default CacheEnabled = %v, want true", cfg.CacheEnabled)
	}
	if cfg.CleanupPeriodDays != 30 {
		t.Errorf("Load() default CleanupPeriodDays = %v, want 30", cfg.CleanupPeriodDays)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Load() default LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_WithGlobalConfig(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()
	origWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(origWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}

	// Save original XDG
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		if origXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", origXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	}()

	// Set XDG to temp directory
	xdgDir := filepath.Join(tmpDir, "config")
	_ = os.Setenv("XDG_CONFIG_HOME", xdgDir)

	// Clear env vars that would shadow the file values
	origFormat := os.Getenv("TRANSCRIPTR_OUTPUT_FORMAT")
	defer func() {
		if origFormat != "" {
			_ = os.Setenv("TRANSCRIPTR_OUTPUT_FORMAT", origFormat)
		}
	}()
	_ = os.Unsetenv("TRANSCRIPTR_OUTPUT_FORMAT")

	// Write global config
	globalCfg := &Config{
		ProjectsDir:       "/global/projects",
		OutputFormat:      "md",
		PageSize:          100,
		CacheEnabled:      false,
		DataDir:           ".global",
		CleanupPeriodDays: 14,
		LogLevel:          "warn",
	}
	if err := WriteGlobal(globalCfg); err != nil {
		t.Fatalf("WriteGlobal() error = %v", err)
	}

	// Load and verify
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ProjectsDir != globalCfg.ProjectsDir {
		t.Errorf("Load() ProjectsDir = %v, want %v", cfg.ProjectsDir, globalCfg.ProjectsDir)
	}
	if cfg.OutputFormat != globalCfg.OutputFormat {
		t.Errorf("Load() OutputFormat = %v, want %v", cfg.OutputFormat, globalCfg.OutputFormat)
	}
	if cfg.PageSize != globalCfg.PageSize {
		t.Errorf("Load() PageSize = %v, want %v", cfg.PageSize, globalCfg.PageSize)
	}
	if cfg.LogLevel != globalCfg.LogLevel {
		t.Errorf("Load() LogLevel = %v, want %v", cfg.LogLevel, globalCfg.LogLevel)
	}
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > len(substr) && containsAt(s, substr))
}

func containsAt(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
