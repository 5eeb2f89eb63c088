package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jstrand/bt/internal/content"
	"github.com/jstrand/bt/internal/models"
	"github.com/jstrand/bt/internal/output"
	"github.com/spf13/cobra"
)

var beginTrack string

var beginCmd = &cobra.Command{
	Use:     "begin",
	Short:   "Start a breathing program",
	GroupID: "practice",
	Long: `Start a new program. Without --track, a short assessment picks the
track: experienced practitioners with ten or more minutes a day get the
21-day extended track, everyone else the 5-day standard track.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		var kind models.TrackKind
		if beginTrack != "" {
			kind = models.TrackKind(beginTrack)
			if !kind.Valid() {
				return fmt.Errorf("unknown track %q (want standard or extended)", beginTrack)
			}
		} else {
			assessment, err := runAssessment()
			if err != nil {
				return err
			}
			kind = content.ChooseTrack(assessment)
		}

		prog, err := content.NewProgram(kind, time.Now())
		if err != nil {
			return err
		}

		if err := sess.Controller.CreateProgram(cmd.Context(), prog); err != nil {
			output.Error("start program: %v", err)
			return err
		}

		label := "standard (5 days)"
		if kind == models.TrackExtended {
			label = "extended (21 days)"
		}
		output.Success("Started the %s track. Day 1 is open now.", label)
		output.Info("Run 'bt today' to see your first session.")
		return nil
	},
}

// runAssessment asks the two intake questions.
func runAssessment() (content.Assessment, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Have you practiced breathing exercises before? [y/N] ")
	answer, err := reader.ReadString('\n')
	if err != nil {
		return content.Assessment{}, fmt.Errorf("read answer: %w", err)
	}
	experienced := strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")

	fmt.Print("How many minutes a day can you practice? ")
	answer, err = reader.ReadString('\n')
	if err != nil {
		return content.Assessment{}, fmt.Errorf("read answer: %w", err)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || minutes < 0 {
		return content.Assessment{}, fmt.Errorf("minutes must be a non-negative number")
	}

	return content.Assessment{Experienced: experienced, MinutesPerDay: minutes}, nil
}

func init() {
	beginCmd.Flags().StringVar(&beginTrack, "track", "", "skip the assessment and pick a track (standard|extended)")
	rootCmd.AddCommand(beginCmd)
}
