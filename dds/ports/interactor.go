package ports

// Interactor is the output side of the command line front end.
type Interactor interface {
	Output(message string)
	Warning(message string)
	Error(message string, err error)
	Table(headers []string, rows [][]string)
}
