package cli

import (
	"context"
	"fmt"

	"resumeats/internal/ai"
	"resumeats/internal/common"
	"resumeats/internal/config"
	"resumeats/internal/session"
	"resumeats/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume once and print the result",
	Long: `Analyze a resume (PDF, DOCX or plain text) with one of three modes:

- quick:    Quick Scan, a short overview of profession, strengths and gaps
- detailed: Detailed Analysis, section by section feedback
- ats:      ATS Optimization, keyword and formatting review with a score

Add a job description inline with --job-description or from a file with
--job-file to compare the resume against a specific role.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		return analyzeOpts.validate(cfg)
	},
	RunE: runAnalyze,
}

// dialogueOptions are the input flags shared by analyze and interview
type dialogueOptions struct {
	common.CommandConfig
	Mode           string
	JobDescription string
	JobFile        string

	mode types.AnalysisMode
}

var analyzeOpts dialogueOptions

func (o *dialogueOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Mode, "mode", "m", "quick", "Analysis mode: quick, detailed, or ats")
	cmd.Flags().StringVarP(&o.JobDescription, "job-description", "j", "", "Job description text")
	cmd.Flags().StringVar(&o.JobFile, "job-file", "", "File containing the job description")
	cmd.Flags().StringVarP(&o.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&o.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, 0, len(types.AllModes))
		for _, m := range types.AllModes {
			modes = append(modes, m.String())
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

func (o *dialogueOptions) validate(cfg *config.Config) error {
	if o.OutputFormat == "" {
		o.OutputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(o.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}
	if err := common.ValidateJobDescriptionFlags(o.JobDescription, o.JobFile); err != nil {
		return err
	}

	mode, err := types.ParseAnalysisMode(o.Mode)
	if err != nil {
		return err
	}
	o.mode = mode
	return nil
}

// jobDescription returns the inline text or the content of the job file
func (o *dialogueOptions) jobDescription(fp *common.FileProcessor) (string, error) {
	if o.JobFile == "" {
		return o.JobDescription, nil
	}
	return fp.ReadText(o.JobFile)
}

func init() {
	analyzeOpts.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	upload, err := fp.ReadUpload(args[0])
	if err != nil {
		return err
	}
	jobDescription, err := analyzeOpts.jobDescription(fp)
	if err != nil {
		return err
	}

	asst, svc, err := buildAssistant(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeService(svc, logger)

	logger.Info("Starting resume analysis",
		"file", upload.FileName,
		"mode", analyzeOpts.mode,
		"job_description", jobDescription != "",
		"output_format", analyzeOpts.OutputFormat)

	st := session.NewState(uuid.NewString())
	err = common.RunAICommand(ctx, logger, analyzeOpts.CommandConfig, cmd.OutOrStdout(),
		func(ctx context.Context) (types.AnalysisResult, *ai.TokenUsage, error) {
			return asst.Analyze(ctx, st, upload, jobDescription, analyzeOpts.mode)
		})
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	logger.Info("Resume analysis completed successfully")
	return nil
}
