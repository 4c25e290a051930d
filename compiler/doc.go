/*

Process of compilation

IL Source Text ->
	lex ->
Token Stream (token) ->
	parse ->
Abstract Syntax Tree (ast) ->
	analyze ->
Symbol Table (symtab) + Resolved Types (tp) ->
	optimize ->
Optimized AST (optimizer) ->
	generate ->
Jasmin Assembly Text (codegen) ->
	assemble (external.Assembler, a java -jar subprocess) ->
JVM Class Files ->
	archive (external.Archiver) ->
.jar Archive

*/
package compiler
