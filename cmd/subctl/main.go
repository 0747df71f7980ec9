// subctl is a terminal client for the subscribers API. It drives the
// same sync controller the web page uses: every mutation that succeeds
// is followed by a full list reload, so the table always shows what the
// server has.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiendacafe/subscribers-api/pkg/client"
)

var (
	apiURL  string
	skipAsk bool
)

// tableView renders subscriber rows as a tab-aligned table on stdout
// and notices on stderr.
type tableView struct{}

func (tableView) Render(rows []client.Row) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSUBSCRIBED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.Subscribed)
	}
	_ = w.Flush()
}

func (tableView) Notify(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func newController() *client.Controller {
	api := client.NewClient(apiURL, &http.Client{Timeout: 10 * time.Second})
	return client.NewController(api, tableView{})
}

var rootCmd = &cobra.Command{
	Use:   "subctl",
	Short: "Manage newsletter subscribers from the terminal",
	Long: `subctl talks to a running subscribers API.

Examples:
  subctl list
  subctl add --name "Ana Gómez" --email ana@example.com
  subctl update 4f2b... --name "Ana G." --email ana@example.com
  subctl remove 4f2b... --yes`,
	// the controller already prints user-facing messages via Notify
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all subscribers, newest first",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return newController().Load(cmd.Context())
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single subscriber",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api := client.NewClient(apiURL, &http.Client{Timeout: 10 * time.Second})
		sub, err := api.Get(cmd.Context(), args[0])
		if err != nil {
			tableView{}.Notify(err.Error())
			return err
		}
		tableView{}.Render(client.BuildRows([]client.Subscriber{*sub}))
		return nil
	},
}

var (
	addName  string
	addEmail string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Subscribe a new person",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newController().CreateSubscriber(cmd.Context(), addName, addEmail)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a subscriber's name and email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newController().UpdateSubscriber(cmd.Context(), args[0], addName, addEmail)
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Unsubscribe a person permanently",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !skipAsk && !confirm(fmt.Sprintf("remove subscriber %s? [y/N] ", args[0])) {
			fmt.Fprintln(os.Stderr, "aborted")
			return nil
		}
		return newController().RemoveSubscriber(cmd.Context(), args[0])
	},
}

func confirm(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func init() {
	defaultAPI := os.Getenv("SUBSCRIBERS_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:3000"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "base URL of the subscribers API")

	addCmd.Flags().StringVar(&addName, "name", "", "subscriber name")
	addCmd.Flags().StringVar(&addEmail, "email", "", "subscriber email")
	updateCmd.Flags().StringVar(&addName, "name", "", "subscriber name")
	updateCmd.Flags().StringVar(&addEmail, "email", "", "subscriber email")
	removeCmd.Flags().BoolVarP(&skipAsk, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(listCmd, getCmd, addCmd, updateCmd, removeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
