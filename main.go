package main

import "github.com/fractalqualia/video-downloader-api/cmd"

func main() {
	cmd.Execute()
}
