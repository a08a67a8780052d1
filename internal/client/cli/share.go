package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var fetchDir string

func init() {
	shareFetchCmd.Flags().StringVarP(&fetchDir, "out", "o", ".", "directory to save the file into")

	shareCmd.AddCommand(shareInfoCmd)
	shareCmd.AddCommand(shareRequestCmd)
	shareCmd.AddCommand(shareVerifyCmd)
	shareCmd.AddCommand(shareFetchCmd)
	shareCmd.AddCommand(shareLogCmd)
}

var shareCmd = &cobra.Command{
	Use:   "share <file-id>",
	Short: "Create a time-limited share link for one of your files",
	Long: `Creates a share link for a file you own. Anyone holding the link can see
the file name and request access; downloading additionally requires a
verification code that the server emails to you.

The subcommands cover the recipient side of the flow:
  info     show what a share link points to
  request  ask the owner for a verification code
  verify   check a received code
  fetch    download the file with a verified code
  log      show who accessed your shared file (owner only)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		grant, err := client.Share(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " Share link created, valid until " +
			color.YellowString(grant.ShareExpiry.Local().Format("2006-01-02 15:04")))
		fmt.Println(color.CyanString("→") + " " + grant.ShareURL)
		return nil
	},
}

var shareInfoCmd = &cobra.Command{
	Use:   "info <share-token>",
	Short: "Show what a share link points to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newClient().ShareInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s, %d bytes), shared by %s\n",
			color.YellowString(info.FileName), info.ContentType, info.FileSize, info.SharedBy)
		return nil
	},
}

var shareRequestCmd = &cobra.Command{
	Use:   "request <share-token>",
	Short: "Request access; the owner receives a verification code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := newClient().RequestAccess(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " " + msg)
		fmt.Println(color.CyanString("→") + " Ask the owner for the code, then run " +
			color.YellowString("secureshare share verify "+args[0]+" <code>"))
		return nil
	},
}

var shareVerifyCmd = &cobra.Command{
	Use:   "verify <share-token> <code>",
	Short: "Verify a received access code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().VerifyAccess(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " Code accepted")
		fmt.Println(color.CyanString("→") + " Run " +
			color.YellowString("secureshare share fetch "+args[0]+" "+args[1]) + " to download")
		return nil
	},
}

var shareFetchCmd = &cobra.Command{
	Use:   "fetch <share-token> <code>",
	Short: "Download a shared file with a verified code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := newClient().FetchShared(cmd.Context(), args[0], args[1], fetchDir)
		if err != nil {
			return err
		}

		fmt.Println(color.GreenString("✓") + " Saved to " + color.YellowString(path))
		return nil
	},
}

var shareLogCmd = &cobra.Command{
	Use:   "log <file-id>",
	Short: "Show the access history of one of your files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		records, err := client.AccessHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No accesses recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tADDRESS")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\n", r.AccessTime.Local().Format("2006-01-02 15:04:05"), r.IPAddress)
		}
		return w.Flush()
	},
}
