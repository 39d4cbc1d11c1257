/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/cccb/transferd/cmd/transferd/cmd"

func main() {
	cmd.Execute()
}
