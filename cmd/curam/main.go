package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/adapter"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/config"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/dispatch"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/imagegen"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/mailer"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/router"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/session"
)

var (
	catalogFile string
	debugFlag   bool
	aliases     *config.ModelAliases
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "curam",
		Short: "AI gateway with task-aware model selection and resilient dispatch",
		Long: `Curam routes prompts to the most appropriate AI model by classifying
	the task, scoring a model catalog, and dispatching with bounded retries.
	Slow-tier inference models are invoked through a retry state machine
	that understands model cold starts and rate limits.`,
	}

	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "path to model catalog file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(invokeCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(imagineCmd())
	rootCmd.AddCommand(sendCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var adapterFlag string
	var modelFlag string
	var preferFlag string

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt to the best-matching model",
		Long: `Classifies the prompt, scores the model catalog against the analysis,
	and sends the prompt to the winning model.

	Use --adapter and --model to bypass selection, or --prefer to bias it
	toward speed or quality.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return fmt.Errorf("failed to create adapters: %w", err)
			}

			sess := session.New()
			if preferFlag != "" {
				if !validPreference(preferFlag) {
					return fmt.Errorf("invalid --prefer %q (want speed, quality, or balance)", preferFlag)
				}
				sess.SetPreference("priority", preferFlag)
			}

			var targetAdapter adapter.Adapter
			var model string

			if adapterFlag != "" {
				a, ok := adapters[adapterFlag]
				if !ok {
					return fmt.Errorf("adapter %q not available", adapterFlag)
				}
				targetAdapter = a
				if modelFlag != "" {
					model = aliases.Resolve(modelFlag)
				} else {
					models := a.Models()
					if len(models) > 0 {
						model = models[0]
					}
				}
				fmt.Fprintf(os.Stderr, "Using %s/%s (override)\n", targetAdapter.Name(), model)
			} else {
				classifier := router.NewClassifier(adapters, cfg.Catalog.Classifier, router.WithDebug(debugFlag))
				analysis := classifier.Classify(ctx, prompt)
				if pref, ok := sess.Preference("priority"); ok {
					biased := *analysis
					biased.Priority = router.Priority(pref)
					analysis = &biased
				}

				selection, err := router.SelectModel(analysis, router.CatalogFromConfig(cfg.Catalog))
				if err != nil {
					return err
				}

				a, ok := adapters[selection.Model.Provider]
				if !ok {
					return fmt.Errorf("provider %q not configured (missing API key?)", selection.Model.Provider)
				}
				targetAdapter = a
				model = aliases.Resolve(selection.Model.ID)
				fmt.Fprintf(os.Stderr, "Routing to %s/%s (score=%d, confidence=%.1f, %s)\n",
					selection.Model.Provider, model, selection.Score, selection.Confidence, analysis.Source)
			}

			if targetAdapter == nil {
				return fmt.Errorf("no adapter available")
			}

			sess.Append("user", prompt)
			art, err := targetAdapter.Generate(ctx, model, prompt)
			if err != nil {
				return err
			}
			sess.Append("assistant", art.Content)

			fmt.Println(art.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&adapterFlag, "adapter", "", "override adapter (google, anthropic, huggingface)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "override model")
	cmd.Flags().StringVar(&preferFlag, "prefer", "", "bias selection (speed, quality, balance)")

	return cmd
}

func classifyCmd() *cobra.Command {
	var localFlag bool

	cmd := &cobra.Command{
		Use:   "classify [prompt]",
		Short: "Show the task analysis for a prompt",
		Long: `Runs the task classifier and prints the resulting analysis as JSON.
	Use --local to skip the remote classifier and show the heuristic result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			var analysis *router.TaskAnalysis
			if localFlag {
				analysis = router.FallbackAnalysis(prompt)
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				adapters, err := createAdapters(cfg)
				if err != nil {
					return fmt.Errorf("failed to create adapters: %w", err)
				}
				classifier := router.NewClassifier(adapters, cfg.Catalog.Classifier, router.WithDebug(debugFlag))
				analysis = classifier.Classify(context.Background(), prompt)
			}

			data, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&localFlag, "local", false, "use the local heuristic only")

	return cmd
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model catalog and aliases",
		Long: `Lists the selection catalog with provider, cost, and speed tiers.

	Use --resolve to show aliases and what they resolve to.
	Use --validate to check every catalog entry against the provider lists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases()
			}

			if validateFlag {
				return validateCatalog(cfg)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPROVIDER\tCOST\tSPEED\tCHARACTERISTICS\tSTATUS")

			for _, entry := range cfg.Catalog.Models {
				status := "no key"
				if cfg.HasAdapter(entry.Provider) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					entry.ID, entry.Provider, entry.CostTier, entry.SpeedTier,
					formatList(entry.Characteristics), status)
			}

			fmt.Fprintln(w)
			fmt.Fprintf(w, "CLASSIFIER\t%s\t-\t-\t%s\t-\n",
				cfg.Catalog.Classifier.Adapter, cfg.Catalog.Classifier.Model)

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check catalog entries against provider lists")

	return cmd
}

func showAliases() error {
	if aliases == nil {
		fmt.Println("No model aliases configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	aliasMap := aliases.ListAliases()
	var aliasNames []string
	for name := range aliasMap {
		aliasNames = append(aliasNames, name)
	}
	sort.Strings(aliasNames)

	for _, alias := range aliasNames {
		model := aliasMap[alias]
		provider := aliases.GetProviderForModel(model)
		fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, provider)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "PROVIDER\tMODELS")
	for _, provider := range aliases.ListProviders() {
		fmt.Fprintf(w, "%s\t%s\n", provider, formatList(aliases.GetProviderModels(provider)))
	}

	return w.Flush()
}

func validateCatalog(cfg *config.Config) error {
	if aliases == nil {
		fmt.Println("No model aliases configured - nothing to validate.")
		return nil
	}

	errors := aliases.ValidateCatalog(cfg.Catalog)
	if len(errors) == 0 {
		fmt.Println("All catalog entries are valid.")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d validation errors:\n", len(errors))
	for _, err := range errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for i := 1; i < len(items); i++ {
		result += ", " + items[i]
	}
	return result
}

func invokeCmd() *cobra.Command {
	var taskFlag string
	var contextFlag string
	var attemptsFlag int

	cmd := &cobra.Command{
		Use:   "invoke [model] [input]",
		Short: "Invoke one inference model with bounded retries",
		Long: `Sends the input to a serverless inference model through the retry
	state machine. Cold starts, rate limits, and transient outages are
	waited out; other failures stop immediately.

	For question-answering, pass the passage with --context.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			iv, err := newInvoker(cfg, attemptsFlag)
			if err != nil {
				return err
			}

			model := args[0]
			if aliases.IsAlias(model) {
				model = aliases.Resolve(model)
				fmt.Fprintf(os.Stderr, "Resolved %s to %s\n", args[0], model)
			}

			result := iv.Invoke(context.Background(), dispatch.Request{
				Model:   model,
				Input:   args[1],
				Context: contextFlag,
				Task:    dispatch.TaskKind(taskFlag),
			})

			if !result.Succeeded() {
				return fmt.Errorf("%s failed after %d attempt(s): %s",
					result.Model, len(result.Attempts), result.ErrorMessage())
			}

			if debugFlag {
				fmt.Fprintf(os.Stderr, "%s succeeded on attempt %d\n", result.Model, len(result.Attempts))
			}
			fmt.Println(result.Parsed)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskFlag, "task", string(dispatch.TextGeneration),
		"task kind (text-generation, text-classification, question-answering, summarization, fill-mask)")
	cmd.Flags().StringVar(&contextFlag, "context", "", "passage for question-answering tasks")
	cmd.Flags().IntVar(&attemptsFlag, "attempts", 0, "override the retry budget")

	return cmd
}

func batchCmd() *cobra.Command {
	var modelsFlag []string
	var taskFlag string
	var concurrencyFlag int

	cmd := &cobra.Command{
		Use:   "batch [input]",
		Short: "Send one input to several models and compare",
		Long: `Dispatches the same input to every model in --models. Calls run in
	batches of at most three; a failing model never aborts its siblings,
	and every model reports an outcome.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(modelsFlag) == 0 {
				return fmt.Errorf("--models is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			iv, err := newInvoker(cfg, 0)
			if err != nil {
				return err
			}

			resolved := make([]string, 0, len(modelsFlag))
			for _, m := range modelsFlag {
				resolved = append(resolved, aliases.Resolve(m))
			}

			concurrency := concurrencyFlag
			if concurrency == 0 {
				concurrency = cfg.Catalog.Dispatch.MaxConcurrent
			}

			batch := iv.InvokeMany(context.Background(), resolved, args[0],
				dispatch.TaskKind(taskFlag), concurrency)

			for _, result := range batch.Results {
				if result.Succeeded() {
					fmt.Printf("=== %s ===\n%s\n\n", result.Model, result.Parsed)
				} else {
					fmt.Printf("=== %s ===\nFAILED: %s\n\n", result.Model, result.ErrorMessage())
				}
			}
			fmt.Fprintf(os.Stderr, "%d/%d models succeeded\n", batch.SuccessCount, len(batch.Results))

			if batch.SuccessCount == 0 {
				return fmt.Errorf("all models failed")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelsFlag, "models", nil, "models to dispatch to (required)")
	cmd.Flags().StringVar(&taskFlag, "task", string(dispatch.TextGeneration), "task kind")
	cmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "requested concurrency (capped at 3)")

	return cmd
}

func imagineCmd() *cobra.Command {
	var outFlag string
	var engineFlag string
	var widthFlag int
	var heightFlag int
	var stepsFlag int
	var samplesFlag int

	cmd := &cobra.Command{
		Use:   "imagine [prompt]",
		Short: "Generate images from a text prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client, err := imagegen.NewClient(cfg.StabilityAPIKey)
			if err != nil {
				return err
			}

			images, err := client.Generate(context.Background(), args[0], imagegen.Options{
				Engine:  engineFlag,
				Width:   widthFlag,
				Height:  heightFlag,
				Steps:   stepsFlag,
				Samples: samplesFlag,
			})
			if err != nil {
				return err
			}

			for i, img := range images {
				path := outFlag
				if path == "" {
					path = fmt.Sprintf("curam-%d.png", time.Now().Unix())
				}
				if len(images) > 1 {
					ext := filepath.Ext(path)
					path = fmt.Sprintf("%s-%d%s", path[:len(path)-len(ext)], i+1, ext)
				}
				if err := os.WriteFile(path, img.Data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(os.Stderr, "Wrote %s (seed=%d, %s)\n", path, img.Seed, img.FinishReason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file path")
	cmd.Flags().StringVar(&engineFlag, "engine", "", "generation engine")
	cmd.Flags().IntVar(&widthFlag, "width", 0, "image width")
	cmd.Flags().IntVar(&heightFlag, "height", 0, "image height")
	cmd.Flags().IntVar(&stepsFlag, "steps", 0, "diffusion steps")
	cmd.Flags().IntVar(&samplesFlag, "samples", 0, "number of images")

	return cmd
}

func sendCmd() *cobra.Command {
	var toFlag []string
	var subjectFlag string
	var textFlag string
	var htmlFlag string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an email through the transactional mail API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client := mailer.NewClient()
			err = client.Send(context.Background(), mailer.Message{
				FromAddress: cfg.MailFrom.Address,
				FromName:    cfg.MailFrom.Name,
				To:          toFlag,
				Subject:     subjectFlag,
				TextBody:    textFlag,
				HTMLBody:    htmlFlag,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, "Message accepted.")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&toFlag, "to", nil, "recipient addresses (required)")
	cmd.Flags().StringVar(&subjectFlag, "subject", "", "message subject (required)")
	cmd.Flags().StringVar(&textFlag, "text", "", "plain-text body")
	cmd.Flags().StringVar(&htmlFlag, "html", "", "HTML body")

	return cmd
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if catalogFile != "" {
		cfg, err = config.LoadWithCatalogFile(catalogFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	aliases, err = config.LoadAliasesWithFallback()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.HuggingFaceAPIKey != "" {
		a, err := adapter.NewHuggingFaceAdapterWithTimeout(cfg.HuggingFaceAPIKey, dispatchTimeout(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to create huggingface adapter: %w", err)
		}
		adapters["huggingface"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}

func newInvoker(cfg *config.Config, attempts int) (*dispatch.Invoker, error) {
	if cfg.HuggingFaceAPIKey == "" {
		return nil, fmt.Errorf("HF_API_KEY is required for inference dispatch")
	}

	hf, err := adapter.NewHuggingFaceAdapterWithTimeout(cfg.HuggingFaceAPIKey, dispatchTimeout(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create huggingface adapter: %w", err)
	}

	opts := []dispatch.Option{
		dispatch.WithMaxAttempts(cfg.Catalog.Dispatch.MaxAttempts),
		dispatch.WithBatchPause(time.Duration(cfg.Catalog.Dispatch.BatchPauseMs) * time.Millisecond),
	}
	if attempts > 0 {
		opts = append(opts, dispatch.WithMaxAttempts(attempts))
	}

	return dispatch.NewInvoker(hf, opts...), nil
}

func dispatchTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Catalog.Dispatch.TimeoutSeconds) * time.Second
}

func validPreference(p string) bool {
	switch router.Priority(p) {
	case router.PrioritySpeed, router.PriorityQuality, router.PriorityBalance:
		return true
	}
	return false
}
