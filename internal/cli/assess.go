package cli

import (
	"github.com/spf13/cobra"

	service "github.com/JayantA-10/AI-Stress-System/internal/app"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

func newAssessCommand() *cobra.Command {
	var f model.FeatureVector
	var trend int

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one check-in with the configured classifier and rule engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			clf, err := service.NewClassifier(cfg)
			if err != nil {
				return err
			}
			svc := service.New(service.WithClassifier(clf), service.WithLogger(commandLogger(cmd)))

			f.PerformanceTrend = model.PerformanceTrend(trend)
			assessment, err := svc.Assess(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), assessment)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&f.StudyHours, "study-hours", 0, "Hours studied today (0-24)")
	flags.Float64Var(&f.SleepHours, "sleep-hours", 0, "Hours slept last night (0-24)")
	flags.IntVar(&f.MoodLevel, "mood", 0, "Mood level (1-10)")
	flags.IntVar(&f.AssignmentPressure, "pressure", 0, "Assignment pressure (1-10)")
	flags.IntVar(&f.StudyConsistency, "consistency", 0, "Study consistency (1-10)")
	flags.IntVar(&trend, "trend", 0, "Performance trend: -1 declining, 0 stable, 1 improving")
	for _, name := range []string{"study-hours", "sleep-hours", "mood", "pressure", "consistency"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
