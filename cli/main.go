package main

import (
	"flag"
	"fmt"
	"os"

	"easedrop/cli/api"
	"easedrop/cli/config"
	"easedrop/cli/styles"
	"easedrop/cli/transfer"
	"easedrop/cli/utils"
	"easedrop/shared/constants"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	paths, err := config.SetupConfigDir()
	utils.HandleCLIError("Unable to set up config", err)

	userConfig, err := config.ReadConfig(paths)
	utils.HandleCLIError("Unable to read config", err)

	server := userConfig.Server
	if envServer := os.Getenv("EASEDROP_SERVER"); len(envServer) > 0 {
		server = envServer
	}

	ctx := api.InitContext(server)

	switch os.Args[1] {
	case "send":
		flags := flag.NewFlagSet("send", flag.ExitOnError)
		maxDownloads := flags.Int("downloads", constants.DefaultMaxDownloads,
			"number of downloads before the transfer is destroyed")
		expiryMinutes := flags.Int("expiry", constants.DefaultExpiryMinutes,
			"minutes before the transfer expires")
		_ = flags.Parse(os.Args[2:])

		if flags.NArg() != 1 {
			utils.HandleCLIError("send", fmt.Errorf("usage: easedrop send [flags] <file>"))
		}
		err = transfer.Send(ctx, flags.Arg(0), *maxDownloads, *expiryMinutes)
		utils.HandleCLIError("Unable to send file", err)
	case "receive":
		flags := flag.NewFlagSet("receive", flag.ExitOnError)
		out := flags.String("out", "", "output file path")
		_ = flags.Parse(os.Args[2:])

		if flags.NArg() != 1 {
			utils.HandleCLIError("receive", fmt.Errorf("usage: easedrop receive [flags] <code>"))
		}
		err = transfer.Receive(ctx, flags.Arg(0), *out)
		utils.HandleCLIError("Unable to receive file", err)
	case "info":
		if len(os.Args) != 3 {
			utils.HandleCLIError("info", fmt.Errorf("usage: easedrop info <code>"))
		}
		err = transfer.Info(ctx, os.Args[2])
		utils.HandleCLIError("Unable to fetch transfer info", err)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(styles.TitleStyle.Render("easedrop"))
	fmt.Println(styles.HelpStyle.Render(`
  send [-downloads N] [-expiry M] <file>   encrypt and upload a file
  receive [-out PATH] <code>               download and decrypt a file
  info <code>                              show transfer metadata`))
}
