package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var downloadDir string

func init() {
	downloadCmd.Flags().StringVarP(&downloadDir, "out", "o", ".", "directory to save the file into")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your stored files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		files, err := client.ListFiles(cmd.Context())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No files stored yet. Use " + color.YellowString("secureshare upload <path>") + " to add one.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSIZE\tUPLOADED\tSHARED")
		for _, f := range files {
			shared := "-"
			if f.Shared && f.ShareExpiry != nil {
				shared = "until " + f.ShareExpiry.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				f.ID, f.Name, f.Size, f.UploadedAt.Local().Format("2006-01-02 15:04"), shared)
		}
		return w.Flush()
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Encrypt and store one or more local files on the server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		for _, path := range args {
			info, err := client.Upload(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("upload %s: %w", path, err)
			}
			fmt.Println(color.GreenString("✓") + " Uploaded " + color.YellowString(info.Name) + " (id " + info.ID + ")")
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download and decrypt one of your files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		path, err := client.Download(cmd.Context(), args[0], downloadDir)
		if err != nil {
			return err
		}
		fmt.Println(color.GreenString("✓") + " Saved to " + color.YellowString(path))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file-id>",
	Short: "Delete a stored file and its encrypted blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAuthedClient()
		if err != nil {
			return err
		}

		if err := client.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(color.GreenString("✓") + " File deleted")
		return nil
	},
}
