// draftkit: interactive wizard that turns Korean notes into an English planning draft.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/minios-linux/draftkit/i18n"
	"github.com/minios-linux/draftkit/langmeta"
	"github.com/minios-linux/draftkit/log"
	"github.com/minios-linux/draftkit/scanner"
	"github.com/minios-linux/draftkit/settings"
	"github.com/minios-linux/draftkit/translate"
	"github.com/minios-linux/draftkit/tui"
	"github.com/minios-linux/draftkit/wizard"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir       string
	configPath    string
	uiLang        string
	providerID    string
	modelName     string
	apiKey        string
	baseURL       string
	debug         bool
	logFile       string
	maxConcurrent int
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "draftkit",
		Short: "Interactive wizard that writes English planning drafts",
		Long: `draftkit: interactive planning-draft wizard.

Walks through four phases (goal, context, steps, constraints), collecting
answers typed in Korean. Type "@" to reference a file from the reference
directory. When the last phase is done every answer is translated to
English and saved as a YAML .draft file.

Commands:
  scan        List the files offered by "@" completion
  translate   Translate text with the configured provider
  config      Show or change stored settings
  providers   List translation providers

Translation providers:
  google-translate  Google Translate web endpoint (default, no key)
  google            Google AI (Gemini): API key
  groq              Groq: API key
  ollama            Ollama local server
  custom-openai     Custom OpenAI-compatible endpoint`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init(uiLang)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rootDir, "root", "", "Reference directory for @ completion (overrides settings)")
	pf.StringVar(&configPath, "config", "", "Settings file (default: $XDG_CONFIG_HOME/draftkit/config.json)")
	pf.StringVar(&uiLang, "lang", "", "Interface language (default: from LANGUAGE/LC_ALL/LC_MESSAGES/LANG)")
	pf.StringVar(&providerID, "provider", "", "Translation provider: "+strings.Join(translate.ProviderIDs(), ", "))
	pf.StringVar(&modelName, "model", "", "Model name (AI providers)")
	pf.StringVar(&apiKey, "api-key", "", "API key (or GOOGLE_API_KEY / GROQ_API_KEY / OPENAI_API_KEY)")
	pf.StringVar(&baseURL, "base-url", "", "Custom API base URL")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")
	pf.StringVar(&logFile, "log-file", "", "Log file for the interactive wizard (default: $XDG_STATE_HOME/draftkit/draftkit.log)")
	pf.IntVar(&maxConcurrent, "max-concurrent", 1, "Maximum concurrent translation requests (1 = sequential)")

	_ = root.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, id := range translate.ProviderIDs() {
			out = append(out, id+"\t"+translate.DefaultProviders()[id].Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newScanCmd(),
		newTranslateCmd(),
		newConfigCmd(),
		newProvidersCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Interactive wizard
// ---------------------------------------------------------------------------

func runWizard(ctx context.Context) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	cfg := loadSettings(path)

	logger := log.Noop
	if out, err := openLogFile(); err != nil {
		logWarning("logging disabled: %v", err)
	} else {
		defer out.Close()
		logger = newLogger(out, false)
	}

	tr, prov, err := newTranslator(cfg, logger)
	if err != nil {
		return err
	}

	root := ""
	if cfg.RootDir != "" {
		if dir, err := settings.ValidateDir(cfg.RootDir); err != nil {
			logger.Warningf("ignoring reference directory: %v", err)
		} else {
			root = dir
		}
	}
	logger.WithValues(log.Kv{"provider": prov.ID, "root": root, "lang": i18n.Lang()}).Infof("starting wizard")

	m := tui.NewModel(tui.Config{
		Wizard:       wizard.New(logger),
		Scanner:      scanner.New(root),
		Translator:   tr,
		SettingsPath: path,
		Logger:       logger,
		Context:      ctx,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// scan
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [query]",
		Short: "List the files offered by @ completion",
		Long: `List every non-hidden file below the reference directory, as relative
slash-separated paths. With a query only paths containing it
(case-insensitive) are shown, exactly as the "@" popup filters them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			cfg := loadSettings(path)
			if cfg.RootDir == "" {
				return errors.New("no reference directory configured\n\n" +
					"Set one with:\n" +
					"  draftkit config set-root DIR\n\n" +
					"Or pass it directly:\n" +
					"  --root DIR")
			}
			root, err := settings.ValidateDir(cfg.RootDir)
			if err != nil {
				return err
			}

			files := scanner.New(root).Scan()
			if len(args) == 1 {
				files = scanner.Filter(files, args[0])
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, f)
			}
			logInfo(i18n.N("Found %d file", "Found %d files", len(files)), len(files))
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text with the configured provider",
		Long: `Translate each argument, or each line of standard input when no
arguments are given, from the source to the target language and print one
translation per line. Failed items are printed untranslated.

Examples:
  draftkit translate "안녕하세요"
  draftkit translate --provider groq --model llama-3.3-70b-versatile < notes.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			cfg := loadSettings(path)

			texts := args
			if len(texts) == 0 {
				texts, err = readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
			}
			if len(texts) == 0 {
				return nil
			}

			logger := log.Noop
			if verbose || debug {
				logger = newLogger(cmd.ErrOrStderr(), true)
			}
			tr, prov, err := newTranslator(cfg, logger)
			if err != nil {
				return err
			}
			if verbose {
				logInfo("Translating %d item(s) %s -> %s with %s",
					len(texts), langmeta.Name(cfg.SourceLang), langmeta.Name(cfg.TargetLang), prov.Name)
			}

			out := cmd.OutOrStdout()
			for _, line := range tr.TranslateBatch(cmd.Context(), texts) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log each failed item to stderr")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change stored settings",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetRootCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			cfg := loadSettings(path)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", "file:", path)
			fmt.Fprintf(out, "%-12s %s\n", "root_dir:", valueOrNotSet(cfg.RootDir))
			fmt.Fprintf(out, "%-12s %s\n", "provider:", valueOrNotSet(cfg.Provider))
			fmt.Fprintf(out, "%-12s %s\n", "model:", valueOrNotSet(cfg.Model))
			fmt.Fprintf(out, "%-12s %s\n", "base_url:", valueOrNotSet(cfg.BaseURL))
			key := settings.ResolveAPIKey(cfg.Provider, apiKey, cfg)
			if key != "" {
				key = settings.MaskKey(key)
			}
			fmt.Fprintf(out, "%-12s %s\n", "api_key:", valueOrNotSet(key))
			fmt.Fprintf(out, "%-12s %s (%s)\n", "source_lang:", cfg.SourceLang, langmeta.Name(cfg.SourceLang))
			fmt.Fprintf(out, "%-12s %s (%s)\n", "target_lang:", cfg.TargetLang, langmeta.Name(cfg.TargetLang))
			return nil
		},
	}
}

func newConfigSetRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-root <dir>",
		Short: "Store the reference directory used for @ completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			dir, err := settings.ValidateDir(args[0])
			if err != nil {
				return err
			}
			if err := settings.SetRootDir(path, dir); err != nil {
				return err
			}
			logSuccess("Reference directory set to %s", dir)
			return nil
		},
	}
}

func valueOrNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// ---------------------------------------------------------------------------
// providers
// ---------------------------------------------------------------------------

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List translation providers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			defaults := translate.DefaultProviders()
			for _, id := range translate.ProviderIDs() {
				p := defaults[id]
				marker := " "
				if id == translate.DefaultProvider {
					marker = "*"
				}
				model := p.Model
				if model == "" {
					model = "-"
				}
				key := "no key"
				if env := settings.EnvVarForProvider(id); env != "" {
					key = env
				}
				fmt.Fprintf(out, "%s %-17s %-20s %-26s %s\n", marker, id, p.Name, model, key)
			}
		},
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "draftkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func settingsPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return settings.DefaultPath()
}

// loadSettings reads the settings file and applies the --root flag, which
// is never persisted.
func loadSettings(path string) settings.Config {
	cfg := settings.Load(path)
	if rootDir != "" {
		cfg.RootDir = rootDir
	}
	return cfg
}

// resolveProvider builds the provider configuration from the defaults,
// the settings file and the command-line flags, in increasing priority.
// Stored model and endpoint only apply to the stored provider.
func resolveProvider(cfg settings.Config) (translate.Provider, error) {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if id == "" {
		id = strings.ToLower(cfg.Provider)
	}
	if id == "" {
		id = translate.DefaultProvider
	}

	prov, ok := translate.DefaultProviders()[id]
	if !ok {
		return translate.Provider{}, fmt.Errorf("unknown provider %q (known: %s)", id, strings.Join(translate.ProviderIDs(), ", "))
	}

	if id == strings.ToLower(cfg.Provider) {
		if cfg.BaseURL != "" {
			prov.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			prov.Model = cfg.Model
		}
	}
	if baseURL != "" {
		prov.BaseURL = baseURL
	}
	if modelName != "" {
		prov.Model = modelName
	}
	prov.APIKey = settings.ResolveAPIKey(id, apiKey, cfg)
	return prov, nil
}

func newTranslator(cfg settings.Config, logger log.Logger) (*translate.Translator, translate.Provider, error) {
	prov, err := resolveProvider(cfg)
	if err != nil {
		return nil, prov, err
	}
	backend, err := translate.NewBackend(prov)
	if err != nil {
		if env := settings.EnvVarForProvider(prov.ID); env != "" && prov.APIKey == "" {
			return nil, prov, fmt.Errorf("%w\n\nPass --api-key or export %s", err, env)
		}
		return nil, prov, err
	}
	tr := translate.New(backend, translate.Options{
		Source:        cfg.SourceLang,
		Target:        cfg.TargetLang,
		MaxConcurrent: maxConcurrent,
		Logger:        logger.WithValues(log.Kv{"provider": prov.ID}),
	})
	return tr, prov, nil
}

func newLogger(out io.Writer, color bool) log.Logger {
	return log.New(log.Options{
		Out:   out,
		Debug: debug,
		Color: color && os.Getenv("NO_COLOR") == "",
	})
}

// openLogFile opens the wizard's log file for appending.
func openLogFile() (*os.File, error) {
	path := logFile
	if path == "" {
		dir, err := settings.StateDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "draftkit.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
