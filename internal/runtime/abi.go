// Package runtime names the §6.5 ABI boundary: the C-callable symbols a
// runtime implementation must provide so generated code can call into
// it, and generated code is called back from it (I/O, errors, panics).
// It holds no executable runtime itself — the runtime library is linked
// externally, the way the teacher's CLI links its own runtime.c — but
// centralizes the symbol names codegen declares and the driver's
// post-emission ABI check (abi_check.go) compares emitted IR against, so
// the two stay in lockstep.
package runtime

// Error-slot accessor symbols (§6.5): every `throw`/`try` lowering and
// every fallible runtime helper reads or writes through these.
const (
	SymErrorCurrent      = "tea_error_current"
	SymErrorSetCurrent   = "tea_error_set_current"
	SymErrorClearCurrent = "tea_error_clear_current"
	SymErrorGetTemplate  = "tea_error_get_template"
)

// Panic/abort symbols (§7): unwrap-on-Nil and panic() both resolve to a
// noreturn call, never a normal return.
const (
	SymPanic        = "tea_panic"
	SymUnwrapFailed = "tea_unwrap_failed"
)

// RequiredSymbols lists every symbol a conforming runtime library must
// export, for tooling that wants to sanity-check a linked runtime
// (object inspection, stub generation) without hardcoding the list
// twice.
func RequiredSymbols() []string {
	return []string{
		SymErrorCurrent, SymErrorSetCurrent, SymErrorClearCurrent, SymErrorGetTemplate,
		"tea_error_template_eq",
		SymPanic, SymUnwrapFailed,
		"tea_alloc_string", "tea_alloc_list", "tea_alloc_struct", "tea_alloc_error",
		"tea_closure_new", "tea_closure_set_capture", "tea_closure_invoke",
		"tea_list_get", "tea_list_set", "tea_list_concat", "tea_list_slice",
		"tea_list_append", "tea_list_len",
		"tea_string_concat", "tea_string_push_str", "tea_string_slice", "tea_string_index",
		"tea_dict_new", "tea_dict_get", "tea_dict_set", "tea_dict_keys", "tea_dict_values", "tea_dict_entries",
		"tea_string_equal", "tea_list_equal", "tea_struct_equal", "tea_closure_equal", "tea_dict_equal",
		"tea_box_int", "tea_box_float", "tea_box_bool",
		"tea_unbox_int", "tea_unbox_float", "tea_unbox_bool",
		"tea_nil_optional", "tea_to_string",
		"tea_struct_field_get", "tea_error_field_get",
		"tea_io_print", "tea_io_println", "tea_fs_read_file", "tea_fs_write_file",
		"tea_process_spawn", "tea_process_exit", "tea_regex_compile", "tea_regex_match",
		"tea_json_parse", "tea_json_stringify",
	}
}
