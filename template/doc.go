// Package template renders prompt templates.
//
// The default syntax embeds blocks in double curly braces:
//
//	{{$name}}                 variable
//	{{'text'}} {{"text"}}     literal value
//	{{skill.function}}        function call with the current variables
//	{{skill.function $arg}}   function call with arg bound to "input"
//
// Templates using the "go" format are rendered with text/template instead.
// ChatTemplate combines a system prompt, seeded chat history and a user
// message template into the message list sent to a chat model.
package template
