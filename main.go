package main

import "github.com/KaramelBytes/bikeshare-dashboard/cmd"

func main() {
	cmd.Execute()
}
