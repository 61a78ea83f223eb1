// Package app contains the core application logic. It defines the App
// struct, its configuration, and the generation lifecycle: load the
// description, run the pipeline, write the OpenDRIVE document and the
// optional preview. It is decoupled from any specific entrypoint like a CLI.
package app
