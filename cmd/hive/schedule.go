package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	scheduleConfigPath string
	scheduleAgent      string
	scheduleTask       string
	scheduleInterval   int
	scheduleCron       string
	scheduleChannel    string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled jobs",
	Long:  `Add, list and remove the persistent jobs agents run on a schedule.`,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled job",
	Run:   runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled jobs",
	Run:   runScheduleList,
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Remove a scheduled job",
	Args:  cobra.ExactArgs(1),
	Run:   runScheduleRemove,
}

// openStore loads the configuration and opens the schedule store.
func openStore() *schedule.Store {
	configPath := scheduleConfigPath
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "warn", Format: "text", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	return schedule.NewStore(cfg.SchedulesPath(), log)
}

func runScheduleAdd(cmd *cobra.Command, args []string) {
	if scheduleAgent == "" || scheduleTask == "" {
		fmt.Fprintln(os.Stderr, "Both --agent and --task are required")
		os.Exit(1)
	}

	params := schedule.AddParams{
		AgentName: scheduleAgent,
		Task:      scheduleTask,
		ChannelID: scheduleChannel,
	}
	switch {
	case scheduleCron != "":
		params.Kind = schedule.KindCron
		params.Cron = scheduleCron
	default:
		params.Kind = schedule.KindInterval
		params.IntervalMinutes = scheduleInterval
	}

	store := openStore()
	job, err := store.Add(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add job: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Job added")
	fmt.Printf("ID: %s\n", job.ID)
	fmt.Printf("Agent: %s\n", job.AgentName)
	fmt.Printf("Next run: %s\n", job.NextRun.Format(time.RFC3339))
}

func runScheduleList(cmd *cobra.Command, args []string) {
	store := openStore()
	jobs, err := store.List(scheduleAgent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list jobs: %v\n", err)
		os.Exit(1)
	}

	if len(jobs) == 0 {
		fmt.Println("No scheduled jobs")
		return
	}

	for _, job := range jobs {
		recurrence := fmt.Sprintf("every %d min", job.IntervalMinutes)
		if job.Kind == schedule.KindCron {
			recurrence = fmt.Sprintf("cron %q", job.Cron)
		}
		fmt.Printf("%s  agent=%s  %s  next=%s\n  %s\n",
			job.ID, job.AgentName, recurrence, job.NextRun.Format(time.RFC3339), job.Task)
	}
	fmt.Printf("Total: %d\n", len(jobs))
}

func runScheduleRemove(cmd *cobra.Command, args []string) {
	if scheduleAgent == "" {
		fmt.Fprintln(os.Stderr, "--agent is required: jobs can only be removed by their owner")
		os.Exit(1)
	}

	store := openStore()
	if err := store.Remove(args[0], scheduleAgent); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to remove job: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Removed job %s\n", args[0])
}

func init() {
	scheduleCmd.PersistentFlags().StringVarP(&scheduleConfigPath, "config", "c", "", "Path to configuration file (default: ./config.toml)")
	scheduleCmd.PersistentFlags().StringVarP(&scheduleAgent, "agent", "a", "", "Agent that owns the job")

	scheduleAddCmd.Flags().StringVarP(&scheduleTask, "task", "t", "", "Task text delivered to the agent")
	scheduleAddCmd.Flags().IntVarP(&scheduleInterval, "interval", "i", 0, "Interval in minutes")
	scheduleAddCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (minute hour)")
	scheduleAddCmd.Flags().StringVar(&scheduleChannel, "channel", "", "Channel to deliver job output to")

	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
}
