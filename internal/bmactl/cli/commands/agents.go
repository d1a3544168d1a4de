package commands

import (
	"github.com/spf13/cobra"

	"github.com/bookmarkhub/a2a/internal/bmactl/cli"
)

type capabilityView struct {
	AgentType     string `json:"agentType"`
	Version       string `json:"version"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	LastHeartbeat string `json:"lastHeartbeat"`
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Discover registered pipeline agents",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every currently active agent's capability card",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Agents []capabilityView `json:"agents"`
		}
		if err := cli.GetJSON(cmd.Context(), cli.GlobalConfig.DiscoveryAddr, "/.well-known/agent.json", &result); err != nil {
			return err
		}

		if cli.GlobalConfig.JSON {
			return cli.OutputJSON(result.Agents)
		}
		rows := make([][]string, 0, len(result.Agents))
		for _, a := range result.Agents {
			rows = append(rows, []string{a.AgentType, a.Version, a.Status, a.Description})
		}
		cli.OutputTable([]string{"TYPE", "VERSION", "STATUS", "DESCRIPTION"}, rows)
		return nil
	},
}

var agentsCapabilitiesCmd = &cobra.Command{
	Use:   "capabilities <agentType>",
	Short: "Show one agent's full capability card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var card map[string]any
		if err := cli.GetJSON(cmd.Context(), cli.GlobalConfig.DiscoveryAddr, "/api/agents/"+args[0]+"/capabilities", &card); err != nil {
			return err
		}
		return cli.OutputJSON(card)
	},
}

func init() {
	agentsCmd.AddCommand(agentsListCmd, agentsCapabilitiesCmd)
	cli.RootCmd.AddCommand(agentsCmd)
}
