package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medassist/api/internal/config"
	"medassist/api/internal/content"
	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
	"medassist/api/internal/httpserver"
	"medassist/api/internal/inference"
	"medassist/api/internal/logging"
	"medassist/api/internal/tui"
)

var (
	// Global flags
	configPath string
	verbose    bool
	engineName string

	cfg    *config.Config
	logger *zap.Logger

	// predict
	formName   string
	formAge    string
	formGender string
	formWeight string
	formHeight string
	formNotes  string

	// tui
	startRecognize bool
	pickerDir      string
)

var rootCmd = &cobra.Command{
	Use:   "medassist",
	Short: "Symptom-based disease prediction and medicine recognition",
	Long: `medassist talks to an inference service that predicts a likely disease from a
symptom description and recognizes a medicine from a photo of its package.

Run without arguments to start the terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if engineName != "" {
			cfg.Engine = strings.ToLower(engineName)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		// терминальный UI рисует поверх stderr, логи ему мешают
		if name := cmd.Name(); name == "medassist" || name == "tui" {
			logger = zap.NewNop()
			return nil
		}
		logger, err = logging.New(logging.Options{Level: cfg.LogLevel, Verbose: verbose, Console: true})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

var predictCmd = &cobra.Command{
	Use:   "predict [symptoms...]",
	Short: "Predict a disease from a symptom description",
	Example: `  medassist predict "headache, fever and a sore throat" --age 34 --gender female
  echo "racing heart, sweating" | medassist predict`,
	RunE: runPredict,
}

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize a medicine from a package photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecognize,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve disease and medicine pages over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env vars override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "Inference engine: http | gemini (default from ENGINE)")

	predictCmd.Flags().StringVar(&formName, "name", "", "Patient name")
	predictCmd.Flags().StringVar(&formAge, "age", "", "Age in years")
	predictCmd.Flags().StringVar(&formGender, "gender", "", "male | female | other")
	predictCmd.Flags().StringVar(&formWeight, "weight", "", "Weight in kg")
	predictCmd.Flags().StringVar(&formHeight, "height", "", "Height in cm")
	predictCmd.Flags().StringVar(&formNotes, "notes", "", "Additional notes")

	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().BoolVar(&startRecognize, "recognize", false, "Open the recognition screen first")
		c.Flags().StringVar(&pickerDir, "dir", "", "Start directory of the file picker")
	}

	rootCmd.AddCommand(predictCmd, recognizeCmd, tuiCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func flowOptions() []flow.Option {
	return []flow.Option{flow.WithTimeout(cfg.RequestTimeout), flow.WithLogger(logger)}
}

func defaultEngine() (inference.Engine, error) {
	engs, err := inference.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return engs.Default(), nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")
	if description == "" && !isTerminal(cmd.InOrStdin()) {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		description = string(b)
	}

	eng, err := defaultEngine()
	if err != nil {
		return err
	}
	f := flow.NewTextFlow(eng, flowOptions()...)
	f.Form = types.SymptomForm{
		Description: description,
		Name:        formName,
		Age:         types.ParseAge(formAge),
		Gender:      types.ParseGender(formGender),
		Weight:      types.ParseMeasure(formWeight),
		Height:      types.ParseMeasure(formHeight),
		Notes:       formNotes,
	}

	logger.Debug("submitting prediction", zap.String("engine", eng.Name()))
	task, _ := f.Submit(cmd.Context())
	st, err := task.Wait(cmd.Context())
	if err != nil {
		return err
	}
	if st.Phase == flow.Failed {
		return st.Err
	}
	printPrediction(cmd.OutOrStdout(), st.Result)
	return nil
}

func runRecognize(cmd *cobra.Command, args []string) error {
	img, err := types.ImageFromFile(args[0])
	if err != nil {
		return err
	}
	eng, err := defaultEngine()
	if err != nil {
		return err
	}
	f := flow.NewImageFlow(eng, flowOptions()...)
	f.Select(img)

	logger.Debug("submitting image", zap.String("engine", eng.Name()), zap.String("file", img.Name))
	task, _ := f.Submit(cmd.Context())
	st, err := task.Wait(cmd.Context())
	if err != nil {
		return err
	}
	if st.Phase == flow.Failed {
		return st.Err
	}
	printRecognition(cmd.OutOrStdout(), st.Result)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	eng, err := defaultEngine()
	if err != nil {
		return err
	}
	start := tui.ScreenPredict
	if startRecognize {
		start = tui.ScreenRecognize
	}
	app := tui.New(cmd.Context(),
		flow.NewTextFlow(eng, flowOptions()...),
		flow.NewImageFlow(eng, flowOptions()...),
		tui.Options{BaseURL: cfg.ContentBaseURL, Dir: pickerDir, Start: start})
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	cat, err := content.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &httpserver.Server{Catalog: cat, Log: logger}
	return httpserver.ListenAndServe(ctx, net.JoinHostPort("", cfg.Port), srv.Handler(), logger)
}

func printPrediction(w io.Writer, v types.PredictionView) {
	fmt.Fprintf(w, "Predicted disease: %s\n", v.Disease)
	fmt.Fprintf(w, "Confidence:        %s\n", v.ConfidenceText)
	if len(v.Extracted) > 0 {
		fmt.Fprintf(w, "Extracted:         %s\n", strings.Join(v.Extracted, ", "))
	}
	fmt.Fprintf(w, "Learn more:        %s\n", link(v.Path))
}

func printRecognition(w io.Writer, v types.RecognitionView) {
	fmt.Fprintf(w, "Medicine:   %s\n", v.Medicine)
	fmt.Fprintf(w, "Confidence: %s\n", v.ConfidenceText)
	fmt.Fprintf(w, "Learn more: %s\n", link(v.Path))
}

func link(path string) string {
	return strings.TrimRight(cfg.ContentBaseURL, "/") + path
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return true
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
