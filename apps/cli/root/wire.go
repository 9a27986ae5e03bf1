package root

import (
	slugcmd "github.com/zenGate-Global/pwa-studio/apps/cli/cmd/slug"
	sitecmd "github.com/zenGate-Global/pwa-studio/apps/cli/cmd/site"
)

func init() {
	Root().AddCommand(slugcmd.Command())
	Root().AddCommand(sitecmd.GenerateCommand())
	Root().AddCommand(sitecmd.PublishCommand())
}
