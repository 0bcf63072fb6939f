package main

import "github.com/mbeaver502/CyberLawBot/cmd"

func main() {
	cmd.Execute()
}
