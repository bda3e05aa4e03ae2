package main

import "github.com/Rk346278/real-time-ambulance/cmd"

func main() {
	cmd.Execute()
}
