package main

import "github.com/andresmejia3/labelfix/cmd"

func main() {
	cmd.Execute()
}
