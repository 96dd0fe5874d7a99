package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"resumeats/internal/assistant"
	"resumeats/internal/common"
	"resumeats/internal/document"
	"resumeats/internal/errors"
	"resumeats/internal/session"
	"resumeats/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const assessmentIntro = `Let's evaluate your personality traits based on your resume and job context.
Answer the following questions honestly to receive insights about your work style and behavioral strengths.`

var interviewCmd = &cobra.Command{
	Use:   "interview [resume-file]",
	Short: "Analyze a resume, take the assessment and chat, interactively",
	Long: `Run the whole dialogue in the terminal: the resume is analyzed, up to five
psychometric questions are asked, a personality insight is produced from
your answers, and you can then ask questions about the resume until you
enter an empty line.

With --output the complete report is also written to a file in the chosen
--format.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		return interviewOpts.validate(cfg)
	},
	RunE: runInterview,
}

var interviewOpts dialogueOptions

func init() {
	interviewOpts.register(interviewCmd)
}

func runInterview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	upload, err := fp.ReadUpload(args[0])
	if err != nil {
		return err
	}
	jobDescription, err := interviewOpts.jobDescription(fp)
	if err != nil {
		return err
	}

	asst, svc, err := buildAssistant(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeService(svc, logger)

	d := &dialogue{
		assistant: asst,
		state:     session.NewState(uuid.NewString()),
		in:        bufio.NewScanner(cmd.InOrStdin()),
		out:       cmd.OutOrStdout(),
		logger:    logger,
	}
	report, err := d.run(ctx, upload, jobDescription, interviewOpts.mode)
	if err != nil {
		return err
	}

	if interviewOpts.OutputFile == "" {
		return nil
	}
	return common.NewOutputHandler(logger, cmd.OutOrStdout()).HandleOutput(report, interviewOpts.CommandConfig)
}

// dialogue drives the assistant from line based terminal input
type dialogue struct {
	assistant *assistant.Assistant
	state     *session.State
	in        *bufio.Scanner
	out       io.Writer
	logger    *errors.Logger
}

func (d *dialogue) run(ctx context.Context, upload *document.Upload, jobDescription string, mode types.AnalysisMode) (types.InterviewReport, error) {
	fmt.Fprintf(d.out, "Analyzing %s (%s)...\n", upload.FileName, mode.DisplayName())

	result, usage, err := d.assistant.Analyze(ctx, d.state, upload, jobDescription, mode)
	if err != nil {
		return types.InterviewReport{}, fmt.Errorf("failed to analyze resume: %w", err)
	}
	common.ReportTokenUsage(d.logger, usage)
	report := types.InterviewReport{Analysis: result}

	fmt.Fprintf(d.out, "\nResume analyzed successfully\n\n== Analysis Results ==\n%s\n", result.Response)

	insight, err := d.assessment(ctx)
	if err != nil {
		return report, err
	}
	report.Insight = insight

	report.Chat, err = d.chat(ctx)
	return report, err
}

// assessment asks the questions in order and returns the insight. An empty
// question list skips the step.
func (d *dialogue) assessment(ctx context.Context) (*types.InsightResult, error) {
	set, usage, err := d.assistant.EnsureQuestions(ctx, d.state)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}
	common.ReportTokenUsage(d.logger, usage)

	if len(set.Questions) == 0 {
		fmt.Fprintln(d.out, "\nNo assessment questions were generated.")
		return nil, nil
	}

	fmt.Fprintf(d.out, "\n== Psychometric Assessment ==\n%s\n", assessmentIntro)
	answers := make(map[string]string, len(set.Questions))
	for i, q := range set.Questions {
		fmt.Fprintf(d.out, "\nQ%d. %s\n> ", i+1, q)
		answer, _ := d.readLine()
		answers[q] = answer
	}

	insight, usage, err := d.assistant.SubmitAnswers(ctx, d.state, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate insight: %w", err)
	}
	common.ReportTokenUsage(d.logger, usage)

	fmt.Fprintf(d.out, "\n== Personality Insights & Score ==\n%s\n", insight.Insight)
	return &insight, nil
}

// chat answers questions until an empty line or end of input. A failed reply
// is reported and the loop continues.
func (d *dialogue) chat(ctx context.Context) ([]types.ChatReply, error) {
	fmt.Fprintln(d.out, "\nAsk me anything about your resume or analysis (empty line to finish).")

	var replies []types.ChatReply
	for {
		fmt.Fprint(d.out, "\n> ")
		question, ok := d.readLine()
		if !ok || question == "" {
			fmt.Fprintln(d.out)
			return replies, nil
		}

		reply, usage, err := d.assistant.Chat(ctx, d.state, question)
		if err != nil {
			if ctx.Err() != nil {
				return replies, ctx.Err()
			}
			d.logger.LogError(err, "Chat request failed")
			fmt.Fprintln(d.out, errors.UserMessage(err))
			continue
		}
		common.ReportTokenUsage(d.logger, usage)

		fmt.Fprintln(d.out, reply.Reply)
		replies = append(replies, reply)
	}
}

// readLine returns the next trimmed line; ok is false at end of input
func (d *dialogue) readLine() (string, bool) {
	if !d.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(d.in.Text()), true
}
