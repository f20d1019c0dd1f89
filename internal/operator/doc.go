// Package operator describes the constructor parameters of operator
// classes. Static reads them from source without running any code, Live
// imports the module in a Python interpreter and inspects the signature,
// and Fallback chains the two
package operator
