package runs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/weirdness/internal/common"
	"github.com/dtnitsch/weirdness/pkg/db"
)

// RunsAction lists recorded builds, or shows one build when a run ID is given.
func RunsAction(c *cli.Context) error {
	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := common.OpenDB(config)
	if err != nil {
		return err
	}
	defer database.Close()

	if c.NArg() > 0 {
		build, err := database.GetBuild(c.Args().First())
		if err != nil {
			return err
		}
		return PrintBuild(os.Stdout, build)
	}

	builds, err := database.ListBuilds(c.Int("limit"))
	if err != nil {
		return err
	}
	PrintBuilds(os.Stdout, builds)
	return nil
}

// PrintBuilds writes a table of builds.
func PrintBuilds(w io.Writer, builds []db.Build) {
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds found")
		return
	}

	fmt.Fprintf(w, "%-26s %-20s %-8s %-10s %-9s %-7s %-10s %s\n",
		"Run ID", "Started", "Lang", "Status", "Succeeded", "Failed", "Words", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, b := range builds {
		fmt.Fprintf(w, "%-26s %-20s %-8s %-10s %-9d %-7d %-10d %s\n",
			b.RunID,
			b.StartedAt.Local().Format("2006-01-02 15:04:05"),
			b.Language,
			b.Status,
			b.SucceededCount,
			b.FailedCount,
			b.WordCount,
			b.OutputPath,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d builds\n", len(builds))
	fmt.Fprintf(w, "\nTip: Use 'weirdness runs <run-id>' to see failed partitions\n")
}

type buildDetail struct {
	RunID     string            `yaml:"run_id"`
	Started   string            `yaml:"started"`
	Finished  string            `yaml:"finished"`
	Language  string            `yaml:"language"`
	Version   string            `yaml:"version"`
	Source    string            `yaml:"source"`
	Workers   int               `yaml:"workers"`
	Status    string            `yaml:"status"`
	Output    string            `yaml:"output,omitempty"`
	Words     int               `yaml:"words"`
	Failed    map[string]string `yaml:"failed,omitempty"`
	Succeeded []string          `yaml:"succeeded,omitempty"`
}

// PrintBuild writes one build as YAML.
func PrintBuild(w io.Writer, b *db.Build) error {
	d := buildDetail{
		RunID:    b.RunID,
		Started:  b.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		Finished: b.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		Language: b.Language,
		Version:  b.Version,
		Source:   b.Source,
		Workers:  b.Workers,
		Status:   b.Status,
		Output:   b.OutputPath,
		Words:    b.WordCount,
	}
	for _, p := range b.Partitions {
		if p.Status == db.PartitionFailed {
			if d.Failed == nil {
				d.Failed = map[string]string{}
			}
			d.Failed[p.Key] = p.ErrorMessage
			continue
		}
		d.Succeeded = append(d.Succeeded, p.Key)
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal build: %w", err)
	}
	_, err = w.Write(data)
	return err
}
