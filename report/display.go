package report

import "fmt"

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	fmt.Printf("internal compiler error: %s\n", message)
	fmt.Print("This error was not supposed to happen: please open an issue on GitHub at [insert link]\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	fmt.Printf("fatal error: %s\n\n", message)
}
