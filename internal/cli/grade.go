package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/rehearse/internal/app"
	"github.com/okian/rehearse/internal/domain/model"
)

func newGradeCmd(g *globals) *cobra.Command {
	var (
		req            service.GradeRequest
		status         string
		transcriptFile string
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade one answer and print the result as JSON",
		Example: `  rehearse grade --role backend_node --question-id bn1 --transcript-file answer.txt --duration 45
  echo "we cached the hot path" | rehearse grade --role data_sql --question "Explain indexing." --transcript-file -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readTranscript(cmd.InOrStdin(), transcriptFile)
			if err != nil {
				return err
			}
			req.Transcript = text
			req.Status = model.Status(status)

			svc, err := newService(g.cfg)
			if err != nil {
				return err
			}
			res, err := svc.Grade(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Role, "role", "", "interview role, e.g. backend_node")
	f.StringVar(&req.Question, "question", "", "question text")
	f.StringVar(&req.QuestionID, "question-id", "", "bank question id, used when --question is empty")
	f.StringVar(&transcriptFile, "transcript-file", "", "file holding the transcript, - for stdin")
	f.Float64Var(&req.DurationSeconds, "duration", 0, "answer duration in seconds")
	f.Float64Var(&req.HeadVariance, "head-variance", 0, "head movement variance")
	f.Float64Var(&req.GazeDrift, "gaze-drift", 0, "gaze drift ratio")
	f.StringVar(&status, "status", string(model.StatusAnswered), "answered, skipped or timeout")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

// readTranscript reads the transcript from path, or stdin for "-". An
// empty path is an empty transcript.
func readTranscript(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}
