// Package skill implements the callable units of the kernel.
//
// A Function is either native (Go code wrapped by NativeFunction) or semantic
// (a prompt bound to a chat model, SemanticFunction). Functions are grouped
// into named skills and registered in a Collection. Semantic skills can be
// loaded from a directory tree of skprompt.txt files; native skills are any
// type implementing NativeSkill.
//
// A Dispatcher maps function names chosen by a model to functions and runs
// them with the model's JSON arguments.
package skill
