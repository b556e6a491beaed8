package main

import "github.com/seisgo/mseed/cmd/mseed/cmd"

func main() {
	cmd.Execute()
}
