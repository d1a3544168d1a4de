// Package commands registers bmactl's task and agent subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookmarkhub/a2a/internal/bmactl/cli"
)

type taskView struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	WorkflowType string         `json:"workflowType"`
	CurrentAgent string         `json:"currentAgent"`
	CurrentStep  int            `json:"currentStep"`
	TotalSteps   int            `json:"totalSteps"`
	UserID       string         `json:"userId"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	Context      map[string]any `json:"context"`
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and drive pipeline tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		workflowType, _ := cmd.Flags().GetString("workflow")
		userID, _ := cmd.Flags().GetString("user")

		path := fmt.Sprintf("/api/tasks?status=%s&workflowType=%s&userId=%s", status, workflowType, userID)
		var result struct {
			Tasks []taskView `json:"tasks"`
		}
		if err := cli.GetJSON(cmd.Context(), cli.GlobalConfig.AdminAddr, path, &result); err != nil {
			return err
		}

		if cli.GlobalConfig.JSON {
			return cli.OutputJSON(result.Tasks)
		}
		rows := make([][]string, 0, len(result.Tasks))
		for _, t := range result.Tasks {
			rows = append(rows, []string{t.ID, t.WorkflowType, t.Status, t.CurrentAgent, fmt.Sprintf("%d/%d", t.CurrentStep, t.TotalSteps)})
		}
		cli.OutputTable([]string{"ID", "WORKFLOW", "STATUS", "AGENT", "STEP"}, rows)
		return nil
	},
}

var tasksGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one task's detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var task taskView
		if err := cli.GetJSON(cmd.Context(), cli.GlobalConfig.AdminAddr, "/api/tasks/"+args[0], &task); err != nil {
			return err
		}
		if cli.GlobalConfig.JSON {
			return cli.OutputJSON(task)
		}
		cli.Info("task %s (%s)", task.ID, task.Status)
		cli.OutputTable([]string{"FIELD", "VALUE"}, [][]string{
			{"workflowType", task.WorkflowType},
			{"currentAgent", task.CurrentAgent},
			{"step", fmt.Sprintf("%d/%d", task.CurrentStep, task.TotalSteps)},
			{"userId", task.UserID},
			{"error", task.ErrorMessage},
		})
		return nil
	},
}

var tasksSubmitCmd = &cobra.Command{
	Use:   "submit <workflow> <user> <filePath>",
	Short: "Submit a new import workflow task",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowType, userID, filePath := args[0], args[1], args[2]

		importID, _ := cmd.Flags().GetString("import-id")
		if importID == "" {
			importID = fmt.Sprintf("import-%s", filePath)
		}

		req := map[string]any{
			"taskType":     "bookmark_pipeline",
			"workflowType": workflowType,
			"userId":       userID,
			"context": map[string]any{
				"filePath": filePath,
				"userId":   userID,
				"importId": importID,
			},
		}

		var result struct {
			TaskID string `json:"taskId"`
		}
		if err := cli.PostJSON(cmd.Context(), cli.GlobalConfig.AdminAddr, "/api/tasks", req, &result); err != nil {
			return err
		}
		if cli.GlobalConfig.JSON {
			return cli.OutputJSON(result)
		}
		cli.Success(fmt.Sprintf("submitted task %s", result.TaskID))
		return nil
	},
}

var tasksCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Request cancellation of a running task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.PostJSON(cmd.Context(), cli.GlobalConfig.AdminAddr, "/api/tasks/"+args[0]+"/cancel", nil, nil); err != nil {
			return err
		}
		cli.Success("cancel requested")
		return nil
	},
}

var tasksReplayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Re-dispatch a failed task from its last incomplete stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.PostJSON(cmd.Context(), cli.GlobalConfig.AdminAddr, "/api/tasks/"+args[0]+"/replay", nil, nil); err != nil {
			return err
		}
		cli.Success("replay started")
		return nil
	},
}

var tasksStreamCmd = &cobra.Command{
	Use:   "stream <id>",
	Short: "Follow a task's live progress as it streams server-sent events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.StreamSSE(cmd.Context(), cli.GlobalConfig.AdminAddr, "/api/tasks/"+args[0]+"/stream", func(event, data string) {
			if cli.GlobalConfig.JSON {
				fmt.Println(data)
				return
			}
			var pretty map[string]any
			if json.Unmarshal([]byte(data), &pretty) == nil {
				encoded, _ := json.MarshalIndent(pretty, "", "  ")
				fmt.Fprintf(os.Stdout, "[%s]\n%s\n", event, encoded)
			} else {
				fmt.Fprintf(os.Stdout, "[%s] %s\n", event, data)
			}
		})
	},
}

func init() {
	tasksListCmd.Flags().String("status", "", "Filter by task status")
	tasksListCmd.Flags().String("workflow", "", "Filter by workflow type")
	tasksListCmd.Flags().String("user", "", "Filter by user id")
	tasksSubmitCmd.Flags().String("import-id", "", "Import id to record in import_history (default derived from file path)")

	tasksCmd.AddCommand(tasksListCmd, tasksGetCmd, tasksSubmitCmd, tasksCancelCmd, tasksReplayCmd, tasksStreamCmd)
	cli.RootCmd.AddCommand(tasksCmd)
}
