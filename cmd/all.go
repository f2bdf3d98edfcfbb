package cmd

import (
	_ "vanblog/cmd/backup"
	_ "vanblog/cmd/root"
	_ "vanblog/cmd/server"
	_ "vanblog/cmd/waline"
)
