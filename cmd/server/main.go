// Command server runs the classifieds HTTP API and manages its database schema.
package main

func main() {
	Execute()
}
